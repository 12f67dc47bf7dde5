package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupported indicates an audio file format that cannot be decoded.
var ErrUnsupported = errors.New("unsupported audio format")

// Player plays one decoded audio track.
type Player interface {
	// Play starts the track from the beginning.
	Play() error
	// Stop silences the track.
	Stop() error
	// Close frees the track. The player cannot be used afterwards.
	Close() error
}

// Loader opens the audio file at path.
type Loader func(path string) (Player, error)

// LoadBeep is the default [Loader]. It opens a [BeepPlayer].
func LoadBeep(path string) (Player, error) {
	p, err := NewBeepPlayer(path)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// speakerRate is the sample rate of the process-wide speaker, which is
// initialized by the first track played.
var (
	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
)

func initSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerOnce.Do(func() {
		speakerRate = rate
		speakerErr = speaker.Init(rate, rate.N(time.Second/10))
	})

	return speakerRate, speakerErr
}

// BeepPlayer plays a WAV or MP3 file on the system speaker.
//
// Create instances with [NewBeepPlayer].
type BeepPlayer struct {
	stream beep.StreamSeekCloser
	f      *os.File
	format beep.Format
}

// NewBeepPlayer decodes the audio file at path. The format is chosen by its
// extension. The speaker is not touched until [BeepPlayer.Play].
func NewBeepPlayer(path string) (*BeepPlayer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".wav" && ext != ".mp3" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	f, err := os.Open(path) //nolint:gosec // Audio path from the workspace or CLI.
	if err != nil {
		return nil, fmt.Errorf("opening audio: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)

	switch ext {
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	}

	if err != nil {
		return nil, errors.Join(fmt.Errorf("decoding %s: %w", filepath.Base(path), err), f.Close())
	}

	return &BeepPlayer{stream: stream, f: f, format: format}, nil
}

// Format returns the decoded format of the track.
func (p *BeepPlayer) Format() beep.Format {
	return p.format
}

// Duration returns the length of the track.
func (p *BeepPlayer) Duration() time.Duration {
	return p.format.SampleRate.D(p.stream.Len())
}

// Play rewinds the track and queues it on the speaker, replacing anything
// already playing.
func (p *BeepPlayer) Play() error {
	rate, err := initSpeaker(p.format.SampleRate)
	if err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}

	speaker.Clear()

	speaker.Lock()
	err = p.stream.Seek(0)
	speaker.Unlock()

	if err != nil {
		return fmt.Errorf("rewinding audio: %w", err)
	}

	var s beep.Streamer = p.stream
	if rate != p.format.SampleRate {
		s = beep.Resample(4, p.format.SampleRate, rate, s)
	}

	speaker.Play(s)

	return nil
}

// Stop clears the speaker.
func (p *BeepPlayer) Stop() error {
	speaker.Clear()

	return nil
}

// Close closes the decoder and the file.
func (p *BeepPlayer) Close() error {
	err := p.stream.Close()

	// Decoders may already have closed the file.
	ferr := p.f.Close()
	if errors.Is(ferr, os.ErrClosed) {
		ferr = nil
	}

	return errors.Join(err, ferr)
}
