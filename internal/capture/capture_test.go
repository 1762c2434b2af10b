package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtual(t *testing.T) {
	t.Parallel()

	stream, err := Virtual{}.Open(context.Background(), DefaultConstraints())
	require.NoError(t, err)

	frame, err := stream.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 640, frame.Width)
	assert.Equal(t, 480, frame.Height)

	require.NoError(t, stream.Close())
	_, err = stream.Frame(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSnapshot_Open(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		contentType string
		wantErr     error
	}{
		{"ok", http.StatusOK, "image/jpeg", nil},
		{"forbidden", http.StatusForbidden, "text/plain", ErrPermissionDenied},
		{"unauthorized", http.StatusUnauthorized, "text/plain", ErrPermissionDenied},
		{"server error", http.StatusInternalServerError, "text/plain", ErrCameraUnavailable},
		{"not an image", http.StatusOK, "text/html", ErrCameraUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("\xff\xd8jpeg"))
			}))
			defer srv.Close()

			stream, err := NewSnapshot(srv.URL, time.Second).Open(context.Background(), DefaultConstraints())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, stream)
				return
			}
			require.NoError(t, err)
			defer stream.Close()

			frame, err := stream.Frame(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "image/jpeg", frame.ContentType)
			assert.Equal(t, []byte("\xff\xd8jpeg"), frame.Data)
		})
	}
}

func TestSnapshot_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewSnapshot(url, time.Second).Open(context.Background(), DefaultConstraints())
	assert.ErrorIs(t, err, ErrCameraUnavailable)

	_, err = NewSnapshot("", time.Second).Open(context.Background(), DefaultConstraints())
	assert.ErrorIs(t, err, ErrCameraUnavailable)
}
