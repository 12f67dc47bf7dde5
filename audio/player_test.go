package audio_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/termplay/audio"
)

func writeWAV(t *testing.T, path string, d time.Duration) beep.Format {
	t.Helper()

	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}

	f, err := os.Create(path)
	require.NoError(t, err)

	require.NoError(t, wav.Encode(f, beep.Silence(format.SampleRate.N(d)), format))
	require.NoError(t, f.Close())

	return format
}

func TestNewBeepPlayer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "audio.wav")
	format := writeWAV(t, path, 250*time.Millisecond)

	p, err := audio.NewBeepPlayer(path)
	require.NoError(t, err)

	assert.Equal(t, format.SampleRate, p.Format().SampleRate)
	assert.Equal(t, 250*time.Millisecond, p.Duration())
	require.NoError(t, p.Close())
}

func TestNewBeepPlayerErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.wav")
	require.NoError(t, os.WriteFile(corrupt, []byte("not audio"), 0o600))

	tcs := map[string]struct {
		err  error
		path string
	}{
		"unsupported": {path: filepath.Join(dir, "audio.ogg"), err: audio.ErrUnsupported},
		"missing":     {path: filepath.Join(dir, "missing.wav"), err: os.ErrNotExist},
		"corrupt":     {path: corrupt},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := audio.LoadBeep(tc.path)
			require.Error(t, err)

			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}
