package media_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/termplay/internal/frametest"
	"go.jacobcolvin.com/termplay/media"
)

func TestListFrames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"b.png", "a.JPG", "c.jpeg", "notes.txt", "audio.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.png"), 0o750))

	got, err := media.ListFrames(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPG"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.jpeg"),
	}, got)
}

func TestListFramesEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.wav"), nil, 0o600))

	_, err := media.ListFrames(dir)
	require.ErrorIs(t, err, media.ErrNoImages)

	_, err = media.ListFrames(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadImage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	paths, err := frametest.WritePNGs(dir, 3, 2, frametest.Gray(7), color.RGBA{R: 200, G: 10, B: 30, A: 0xff})
	require.NoError(t, err)

	img, err := media.LoadImage(paths[1])
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())

	r, g, b, _ := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{200, 10, 30}, []uint32{r >> 8, g >> 8, b >> 8})

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not a png"), 0o600))

	_, err = media.LoadImage(bad)
	require.Error(t, err)
}

func TestIsImage(t *testing.T) {
	t.Parallel()

	tcs := map[string]bool{
		"frame.png":  true,
		"frame.PNG":  true,
		"frame.webp": true,
		"frame.tiff": true,
		"movie.mov":  false,
		"png":        false,
	}

	for name, want := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, want, media.IsImage(name))
		})
	}
}
