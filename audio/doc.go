// Package audio plays a sound track alongside a video session.
//
// A [Coordinator] loads one track when the session opens, starts it from the
// beginning whenever playback asks (once per pass when looping), and
// releases it exactly once when the session ends, however it ends. A track
// that is missing or cannot be decoded is logged and skipped.
//
// [BeepPlayer] decodes WAV and MP3 files with beep and plays them on the
// system speaker.
package audio
