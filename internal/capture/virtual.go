package capture

import (
	"context"
	"sync/atomic"
	"time"
)

// Virtual is a camera that is always available and yields blank frames.
// It pairs with detectors that do not look at pixels, such as the
// keyboard pointer.
type Virtual struct{}

// Open returns a stream of blank frames of the requested size.
func (Virtual) Open(_ context.Context, c Constraints) (Stream, error) {
	return &virtualStream{constraints: c}, nil
}

type virtualStream struct {
	constraints Constraints
	closed      atomic.Bool
}

func (s *virtualStream) Frame(ctx context.Context) (Frame, error) {
	if s.closed.Load() {
		return Frame{}, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{
		Width:      s.constraints.Width,
		Height:     s.constraints.Height,
		CapturedAt: time.Now(),
	}, nil
}

func (s *virtualStream) Close() error {
	s.closed.Store(true)
	return nil
}
