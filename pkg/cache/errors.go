package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnavailable is returned by NewRedisCache and NewMongoCache when the
// backend never answers the ping sent while connecting.
var ErrUnavailable = errors.New("cache backend unavailable")

// pingDelay is the pause after the first failed handshake ping. It doubles
// after each further failure.
const pingDelay = time.Second

// handshake pings a remote backend until it answers. A freshly started
// Redis or MongoDB container often refuses connections for a moment, so a
// failed ping is retried before the backend is declared unavailable.
type handshake struct {
	backend  string // used in errors, e.g. "redis localhost:6379"
	attempts int
	delay    time.Duration
}

func newHandshake(backend string) handshake {
	return handshake{backend: backend, attempts: 3, delay: pingDelay}
}

// run calls ping until it succeeds. Once the attempts are used up the last
// ping error is returned wrapped in ErrUnavailable. If ctx ends first, its
// error is returned instead.
func (h handshake) run(ctx context.Context, ping func(context.Context) error) error {
	delay := h.delay
	var last error
	for i := range h.attempts {
		if last = ping(ctx); last == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s handshake: %w", h.backend, ctx.Err())
		}
		if i == h.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s handshake: %w", h.backend, ctx.Err())
		case <-time.After(delay):
			delay *= 2
		}
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, h.backend, last)
}
