// Package playback replays encoded streams in real time.
//
// A [Scheduler] reads a stream line by line, classifying each line with
// [frame.Classify]. Lines accumulate into a buffer that is written with a
// single Write when the next frame boundary arrives, so the terminal never
// shows half a frame. After frame n is written the scheduler sleeps until
// n frame intervals have passed since the pass began. A pass that falls
// behind drops whole frames until its frame count matches the elapsed time;
// [Stats] reports how many.
//
// Streams play from memory with [Scheduler.Play] or incrementally from a
// reader with [Scheduler.PlayPersisted]. Both honor looping and stop
// cleanly when the context is canceled.
//
// A [Track] (see package audio) is started when the first frame of each pass
// is written, stopped when the pass completes, and released once when
// playback returns.
package playback
