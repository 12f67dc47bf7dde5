package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrReleased indicates use of a [Coordinator] after [Coordinator.Release].
var ErrReleased = errors.New("audio released")

// Coordinator ties an audio track to a playback session. It loads the track
// up front, starts it on request, and releases it exactly once.
//
// A Coordinator without a usable track does nothing, so playback continues
// with video only.
//
// Create instances with [NewCoordinator].
type Coordinator struct {
	player   Player
	load     Loader
	logger   *slog.Logger
	path     string
	mu       sync.Mutex
	started  bool
	released bool
}

// CoordinatorOption configures a [Coordinator].
type CoordinatorOption func(*Coordinator)

// WithLoader sets the function that opens the track. The default is
// [LoadBeep].
func WithLoader(load Loader) CoordinatorOption {
	return func(c *Coordinator) {
		c.load = load
	}
}

// WithLogger sets the logger. The default is [slog.Default].
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a [Coordinator] for the audio file at path. An
// empty path means no audio.
func NewCoordinator(path string, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		path:   path,
		load:   LoadBeep,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Open loads the track without playing it. If the track cannot be loaded a
// warning is logged and the coordinator stays silent.
func (c *Coordinator) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" || c.player != nil || c.released {
		return
	}

	p, err := c.load(c.path)
	if err != nil {
		c.logger.Warn("audio unavailable, playing video only",
			slog.String("path", c.path),
			slog.Any("error", err),
		)

		return
	}

	c.player = p

	c.logger.Debug("audio loaded", slog.String("path", c.path))
}

// Available reports whether a track is loaded.
func (c *Coordinator) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.player != nil
}

// Start plays the track from the beginning, restarting it if it is already
// playing.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return ErrReleased
	}

	if c.player == nil {
		return nil
	}

	if c.started {
		err := c.player.Stop()
		if err != nil {
			return fmt.Errorf("stopping audio: %w", err)
		}
	}

	err := c.player.Play()
	if err != nil {
		return fmt.Errorf("playing audio: %w", err)
	}

	c.started = true

	return nil
}

// Stop stops the track if it was started. A later [Coordinator.Start] plays
// it again from the beginning.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.player == nil || !c.started {
		return nil
	}

	c.started = false

	err := c.player.Stop()
	if err != nil {
		return fmt.Errorf("stopping audio: %w", err)
	}

	return nil
}

// Release stops the track if it was started and closes it. Only the first
// call has any effect.
func (c *Coordinator) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.released {
		return nil
	}

	c.released = true

	if c.player == nil {
		return nil
	}

	var errs []error

	if c.started {
		err := c.player.Stop()
		if err != nil {
			errs = append(errs, fmt.Errorf("stopping audio: %w", err))
		}
	}

	err := c.player.Close()
	if err != nil {
		errs = append(errs, fmt.Errorf("closing audio: %w", err))
	}

	c.player = nil

	return errors.Join(errs...)
}
