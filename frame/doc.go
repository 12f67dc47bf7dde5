// Package frame encodes images as text frames of 24-bit ANSI color escapes
// and parses encoded streams back into frames.
//
// An [Encoder] has a fixed [resolution.Grid] and a [Mode]. In
// [ModeTrueColor] every cell is a space drawn on a background color. In
// [ModeReduced] every cell is a glyph from a ramp such as [DefaultGlyphs],
// chosen by [GlyphIndex] from the pixel's intensity and drawn in a foreground
// color.
//
// An encoded frame looks like:
//
//	ESC[H  ESC[48;2;R;G;Bm␠ ... ESC[0m LF
//	       ESC[48;2;R;G;Bm␠ ... ESC[0m LF
//
// The leading [Boundary] homes the cursor so each frame overwrites the last,
// and it doubles as the frame delimiter of a stream. Readers never need a
// frame count or index: [Classify] tags each line as a boundary or row data,
// and [Split] recovers the frames.
package frame
