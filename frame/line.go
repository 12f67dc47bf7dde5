package frame

import "strings"

// Kind classifies a line of an encoded stream.
type Kind int

const (
	// KindRow is a line of row data within a frame.
	KindRow Kind = iota
	// KindBoundary is a line that starts a new frame.
	KindBoundary
)

// Line is a classified line of an encoded stream.
type Line struct {
	// Data is the row data of the line. For a boundary line it is whatever
	// follows the marker, which may be empty.
	Data string
	Kind Kind
}

// Classify tags a single line of an encoded stream. Consecutive leading
// markers count as one.
func Classify(line string) Line {
	if !strings.HasPrefix(line, Boundary) {
		return Line{Kind: KindRow, Data: line}
	}

	rest := line
	for strings.HasPrefix(rest, Boundary) {
		rest = rest[len(Boundary):]
	}

	return Line{Kind: KindBoundary, Data: rest}
}

// HasData reports whether l carries anything other than a line terminator.
func (l Line) HasData() bool {
	return strings.TrimRight(l.Data, "\r\n") != ""
}

// Split divides an encoded stream into frames with the boundary markers
// removed.
//
// Streams that place the marker after each frame instead of before it split
// into the same frames: a trailing marker with no data after it does not
// start a frame.
func Split(text string) []string {
	var (
		frames []string
		cur    strings.Builder
		open   bool
	)

	for line := range strings.SplitAfterSeq(text, "\n") {
		l := Classify(line)

		if l.Kind == KindBoundary {
			if open {
				frames = append(frames, cur.String())
				cur.Reset()
			}

			open = false
		}

		if !l.HasData() {
			continue
		}

		open = true

		cur.WriteString(l.Data)
	}

	if open {
		frames = append(frames, cur.String())
	}

	return frames
}
