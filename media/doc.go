// Package media wraps the external tools and files that feed the encoder.
//
// [Probe] reads a movie's frame size and rate with ffprobe. [ExtractFrames]
// and [ExtractAudio] run ffmpeg to split a movie into still images and a
// sound track, and [ConcatAudio] joins the tracks of several movies.
// [ListFrames] and [LoadImage] read the still images back.
//
// A [Workspace] is a temporary directory that holds the intermediate files
// of one session. It is removed on [Workspace.Close] unless kept.
package media
