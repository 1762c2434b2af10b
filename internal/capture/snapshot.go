package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// maxSnapshotBytes bounds a single snapshot download.
const maxSnapshotBytes = 8 << 20

// Snapshot is a network camera that serves its latest image over HTTP,
// as most IP cameras do (e.g. /snapshot.jpg).
type Snapshot struct {
	URL    string
	Client *http.Client
}

// NewSnapshot creates a snapshot camera for url with a per-request timeout.
func NewSnapshot(url string, timeout time.Duration) *Snapshot {
	return &Snapshot{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Open fetches one snapshot to verify the camera is reachable and allowed.
func (s *Snapshot) Open(ctx context.Context, c Constraints) (Stream, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("%w: no snapshot url configured", ErrCameraUnavailable)
	}
	stream := &snapshotStream{camera: s, constraints: c}
	if _, err := stream.fetch(ctx); err != nil {
		return nil, err
	}
	return stream, nil
}

type snapshotStream struct {
	camera      *Snapshot
	constraints Constraints
	closed      atomic.Bool
}

func (s *snapshotStream) client() *http.Client {
	if s.camera.Client != nil {
		return s.camera.Client
	}
	return http.DefaultClient
}

func (s *snapshotStream) fetch(ctx context.Context) (Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.camera.URL, nil)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}

	resp, err := s.client().Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Frame{}, fmt.Errorf("%w: %s", ErrPermissionDenied, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return Frame{}, fmt.Errorf("%w: %s", ErrCameraUnavailable, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return Frame{}, fmt.Errorf("%w: unexpected content type %q", ErrCameraUnavailable, contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return Frame{}, fmt.Errorf("read snapshot: %w", err)
	}

	return Frame{
		Width:       s.constraints.Width,
		Height:      s.constraints.Height,
		ContentType: contentType,
		Data:        data,
		CapturedAt:  time.Now(),
	}, nil
}

func (s *snapshotStream) Frame(ctx context.Context) (Frame, error) {
	if s.closed.Load() {
		return Frame{}, ErrClosed
	}
	return s.fetch(ctx)
}

func (s *snapshotStream) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.client().CloseIdleConnections()
	}
	return nil
}
