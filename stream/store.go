package stream

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dsnet/compress/bzip2"
	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
)

// Format is a compression format for persisted streams.
type Format string

const (
	// FormatBzip2 compresses with bzip2. Files use the ".bz2" extension.
	FormatBzip2 Format = "bz2"
	// FormatGzip compresses with gzip. Files use the ".gz" extension.
	FormatGzip Format = "gz"
)

const (
	// StreamName is the base name of a saved stream, before the extension.
	StreamName = "output"
	// MetadataName is the file name of saved metadata.
	MetadataName = "stream.yaml"
	// LegacyMetadataName is the metadata file name of older saves.
	LegacyMetadataName = "data.json"
)

var (
	// ErrUnknownFormat indicates an unrecognized compression format.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrInvalidMetadata indicates metadata that is malformed or out of range.
	ErrInvalidMetadata = errors.New("invalid metadata")
)

// GetAllFormatStrings returns all supported format names.
func GetAllFormatStrings() []string {
	return []string{string(FormatBzip2), string(FormatGzip)}
}

// ParseFormat parses a format name. It is case insensitive and accepts a
// leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(s), "."))
	if slices.Contains([]Format{FormatBzip2, FormatGzip}, f) {
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// IsCompressed reports whether path has the extension of a supported format.
func IsCompressed(path string) bool {
	_, err := FormatFromPath(path)

	return err == nil
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// NewWriter returns a writer that compresses to w in format f.
// Closing it flushes the compressor but does not close w.
func NewWriter(w io.Writer, f Format) (io.WriteCloser, error) {
	switch f {
	case FormatBzip2:
		zw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.BestCompression})
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 writer: %w", err)
		}

		return zw, nil

	case FormatGzip:
		return gzip.NewWriter(w), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// NewReader returns a reader that decompresses r in format f.
// Closing it does not close r.
func NewReader(r io.Reader, f Format) (io.ReadCloser, error) {
	switch f {
	case FormatBzip2:
		zr, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, fmt.Errorf("creating bzip2 reader: %w", err)
		}

		return zr, nil

	case FormatGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}

		return zr, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// file chains a buffered compressor onto an open file. Close flushes and
// closes each layer from the outside in.
type file struct {
	*bufio.Writer

	zw io.WriteCloser
	f  *os.File
}

func (f *file) Close() error {
	return errors.Join(f.Flush(), f.zw.Close(), f.f.Close())
}

// Create creates a compressed stream file. The format is chosen by the
// extension of path.
func Create(path string) (io.WriteCloser, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path) //nolint:gosec // Output path from CLI flag is expected.
	if err != nil {
		return nil, fmt.Errorf("creating stream file: %w", err)
	}

	zw, err := NewWriter(f, format)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}

	return &file{Writer: bufio.NewWriter(zw), zw: zw, f: f}, nil
}

type readFile struct {
	io.Reader

	zr io.ReadCloser
	f  *os.File
}

func (r *readFile) Close() error {
	return errors.Join(r.zr.Close(), r.f.Close())
}

// Open opens a compressed stream file for incremental reading. The format is
// chosen by the extension of path.
func Open(path string) (io.ReadCloser, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // Input path from CLI argument is expected.
	if err != nil {
		return nil, fmt.Errorf("opening stream file: %w", err)
	}

	zr, err := NewReader(bufio.NewReader(f), format)
	if err != nil {
		return nil, errors.Join(err, f.Close())
	}

	return &readFile{Reader: zr, zr: zr, f: f}, nil
}

// Saved lists the files written by [Save].
type Saved struct {
	Stream   string
	Metadata string
}

// Save writes s to dir as a compressed stream and a metadata file.
func Save(dir string, s *Stream, format Format) (Saved, error) {
	saved := Saved{
		Stream:   filepath.Join(dir, StreamName+format.Ext()),
		Metadata: filepath.Join(dir, MetadataName),
	}

	w, err := Create(saved.Stream)
	if err != nil {
		return Saved{}, err
	}

	_, err = s.WriteTo(w)

	err = errors.Join(err, w.Close())
	if err != nil {
		return Saved{}, fmt.Errorf("writing %s: %w", saved.Stream, err)
	}

	err = WriteMetadata(saved.Metadata, s.Metadata)
	if err != nil {
		return Saved{}, err
	}

	return saved, nil
}

// WriteMetadata writes meta as YAML to path.
func WriteMetadata(path string, meta Metadata) error {
	err := validateMetadata(meta)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	err = os.WriteFile(path, out, 0o644)
	if err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	return nil
}

// ParseMetadata parses and validates YAML or JSON metadata.
func ParseMetadata(data []byte) (Metadata, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	var instance any

	err = json.Unmarshal(js, &instance)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	resolved, err := metadataSchema()
	if err != nil {
		return Metadata{}, err
	}

	err = resolved.Validate(instance)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	var meta Metadata

	err = yaml.Unmarshal(data, &meta)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrInvalidMetadata, err)
	}

	return meta, nil
}

// LoadMetadata reads the metadata saved in dir. It prefers [MetadataName] and
// falls back to [LegacyMetadataName]. The returned error wraps
// [os.ErrNotExist] if neither exists.
func LoadMetadata(dir string) (Metadata, error) {
	for _, name := range []string{MetadataName, LegacyMetadataName} {
		data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // Directory of a CLI argument.
		if errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err != nil {
			return Metadata{}, fmt.Errorf("reading metadata: %w", err)
		}

		meta, err := ParseMetadata(data)
		if err != nil {
			return Metadata{}, fmt.Errorf("%s: %w", name, err)
		}

		return meta, nil
	}

	return Metadata{}, fmt.Errorf("no metadata in %s: %w", dir, os.ErrNotExist)
}

func validateMetadata(meta Metadata) error {
	if meta.FPS <= 0 || meta.Width < 1 || meta.Height < 1 {
		return fmt.Errorf("%w: fps %v, grid %dx%d", ErrInvalidMetadata, meta.FPS, meta.Width, meta.Height)
	}

	return nil
}

var metadataSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	schema := &jsonschema.Schema{
		Type:     "object",
		Required: []string{"fps", "width", "height"},
		Properties: map[string]*jsonschema.Schema{
			"fps":    {Type: "number", ExclusiveMinimum: ptr(0.0)},
			"width":  {Type: "integer", Minimum: ptr(1.0)},
			"height": {Type: "integer", Minimum: ptr(1.0)},
		},
	}

	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving metadata schema: %w", err)
	}

	return resolved, nil
})

func ptr[T any](v T) *T {
	return &v
}
