package log

import (
	"strings"
	"sync"
)

const defaultBufferSize = 16

// Publisher is an [io.Writer] that turns written log records into status
// lines for interactive views, such as the status bar of the preview.
//
// Each Write is treated as one or more newline-terminated records. Every
// non-empty line is remembered as the latest entry and delivered to each
// [Subscription]. A subscriber that falls behind loses its oldest lines;
// Write never blocks. Safe for concurrent use.
//
// Create instances with [NewPublisher].
type Publisher struct {
	subs    []*Subscription
	last    string
	bufSize int
	mu      sync.Mutex
	closed  bool
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithBufferSize sets the number of lines buffered per subscription.
// Values less than 1 are clamped to 1.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		p.bufSize = max(n, 1)
	}
}

// NewPublisher creates a [Publisher]. The default buffer size is 16 lines.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{bufSize: defaultBufferSize}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Write publishes each non-empty line of b. It always returns len(b), nil.
func (p *Publisher) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return len(b), nil
	}

	for line := range strings.SplitSeq(string(b), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		p.last = line

		live := p.subs[:0]
		for _, sub := range p.subs {
			if sub.send(line) {
				live = append(live, sub)
			}
		}

		clear(p.subs[len(live):])
		p.subs = live
	}

	return len(b), nil
}

// Last returns the most recent line published, or "" if none.
func (p *Publisher) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.last
}

// Subscribe registers a new [Subscription]. On a closed Publisher the
// subscription's channel is already closed.
func (p *Publisher) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription{ch: make(chan string, p.bufSize)}

	if p.closed {
		close(sub.ch)

		return sub
	}

	p.subs = append(p.subs, sub)

	return sub
}

// Close closes every subscription channel. Later writes are discarded.
// Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true

	for _, sub := range p.subs {
		sub.mu.Lock()
		if !sub.done {
			sub.done = true
			close(sub.ch)
		}
		sub.mu.Unlock()
	}

	p.subs = nil

	return nil
}

// Subscription receives lines from a [Publisher].
type Subscription struct {
	ch   chan string
	mu   sync.Mutex
	done bool
}

// C returns the channel that delivers lines. It is closed when the
// subscription or its Publisher is closed.
func (s *Subscription) C() <-chan string {
	return s.ch
}

// Close stops delivery and closes the channel. Idempotent.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.done {
		s.done = true
		close(s.ch)
	}
}

// send delivers line, dropping the oldest buffered line if full. It reports
// false if the subscription is closed.
func (s *Subscription) send(line string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return false
	}

	for {
		select {
		case s.ch <- line:
			return true
		default:
		}

		select {
		case <-s.ch:
		default:
		}
	}
}
