// Package capture provides video sources for hand detection.
package capture

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCameraUnavailable means no video source could be opened.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrPermissionDenied means the video source refused access.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrClosed is returned by Frame after the stream was closed.
	ErrClosed = errors.New("stream closed")
)

// Constraints describe the requested capture size.
type Constraints struct {
	Width  int
	Height int
}

// DefaultConstraints matches the playfield size.
func DefaultConstraints() Constraints {
	return Constraints{Width: 640, Height: 480}
}

// Frame is one captured image. Data may be empty for synthetic sources.
type Frame struct {
	Width       int
	Height      int
	ContentType string
	Data        []byte
	CapturedAt  time.Time
}

// Camera opens video streams.
type Camera interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream delivers frames until closed.
type Stream interface {
	// Frame returns the most recent frame.
	Frame(ctx context.Context) (Frame, error)
	Close() error
}
