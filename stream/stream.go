package stream

import (
	"io"
	"strings"

	"go.jacobcolvin.com/termplay/resolution"
)

// Metadata describes an encoded stream. It is persisted beside the
// compressed stream so it can be replayed without re-encoding.
type Metadata struct {
	FPS    float64 `yaml:"fps"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// Grid returns the cell grid of the stream.
func (m Metadata) Grid() resolution.Grid {
	return resolution.Grid{Cols: m.Width, Rows: m.Height}
}

// Stream is an encoded stream: frames concatenated in order, each starting
// with the frame-boundary marker. It holds no frame index; readers find
// frames by scanning for the marker.
//
// Create instances with [New].
type Stream struct {
	text     strings.Builder
	Metadata Metadata
	frames   int
}

// New creates an empty [Stream].
func New(meta Metadata) *Stream {
	return &Stream{Metadata: meta}
}

// Append adds one encoded frame.
func (s *Stream) Append(frame string) {
	s.text.WriteString(frame)
	s.frames++
}

// Len returns the number of frames appended.
func (s *Stream) Len() int {
	return s.frames
}

// String returns the encoded text.
func (s *Stream) String() string {
	return s.text.String()
}

// Reader returns a reader over the encoded text.
func (s *Stream) Reader() io.Reader {
	return strings.NewReader(s.text.String())
}

// WriteTo writes the encoded text to w.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.text.String())

	return int64(n), err
}
