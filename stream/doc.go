// Package stream assembles encoded frames into a single stream and persists
// it.
//
// An [Assembler] encodes each [Clip] (a directory of still images) with one
// [frame.Encoder], so every frame shares the encoder's grid regardless of the
// source size. Frames are concatenated in clip order, then file-name order.
// [Progress] reports completion at 10% steps.
//
// A [Stream] is saved by [Save] as a compressed file ([FormatBzip2] or
// [FormatGzip]) beside a [MetadataName] file holding the frame rate and grid:
//
//	fps: 24
//	width: 80
//	height: 22
//
// [Open] decompresses incrementally so a saved stream can be played while it
// is read. [LoadMetadata] also accepts the JSON [LegacyMetadataName] file.
package stream
