package media

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"strings"

	// Registered decoders for [LoadImage].
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNoImages indicates a directory without any still images.
var ErrNoImages = errors.New("no images")

var imageExts = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// IsImage reports whether name has the extension of a supported image format.
func IsImage(name string) bool {
	return slices.Contains(imageExts, strings.ToLower(filepath.Ext(name)))
}

// ListFrames returns the paths of the still images in dir, sorted by file
// name. Subdirectories and other files are ignored.
func ListFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}

		names = append(names, e.Name())
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}

	slices.Sort(names)

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
	}

	return paths, nil
}

// LoadImage decodes the still image at path.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // Path from ListFrames.
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}

	img, _, err := image.Decode(f)

	err = errors.Join(err, f.Close())
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}

	return img, nil
}
