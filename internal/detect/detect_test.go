package detect

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/ballcatch/internal/capture"
)

func TestReference_Point(t *testing.T) {
	t.Parallel()

	hand := Hand{Keypoints: []Keypoint{
		{Name: Wrist, X: 100, Y: 200},
		{Name: IndexFingerMCP, X: 140, Y: 120},
		{Name: IndexFingerTip, X: 150, Y: 60},
	}}

	x, y, ok := ReferenceTip.Point(hand)
	require.True(t, ok)
	assert.Equal(t, 150.0, x)
	assert.Equal(t, 60.0, y)

	x, y, ok = ReferencePalm.Point(hand)
	require.True(t, ok)
	assert.Equal(t, 120.0, x)
	assert.Equal(t, 160.0, y)

	_, _, ok = ReferenceTip.Point(Hand{Keypoints: []Keypoint{{Name: Wrist}}})
	assert.False(t, ok)
	_, _, ok = ReferencePalm.Point(Hand{Keypoints: []Keypoint{{Name: Wrist}}})
	assert.False(t, ok)
}

func TestParseReference(t *testing.T) {
	t.Parallel()

	r, err := ParseReference("palm")
	require.NoError(t, err)
	assert.Equal(t, ReferencePalm, r)

	r, err = ParseReference("")
	require.NoError(t, err)
	assert.Equal(t, ReferenceTip, r)

	_, err = ParseReference("thumb")
	assert.Error(t, err)
}

func TestPointer(t *testing.T) {
	t.Parallel()

	p := NewPointer(640, 480)
	x, y := p.Position()
	assert.Equal(t, 320.0, x)
	assert.Equal(t, 240.0, y)

	p.Move(100, -40)
	x, y = p.Position()
	assert.Equal(t, 420.0, x)
	assert.Equal(t, 200.0, y)

	hands, err := p.EstimateHands(context.Background(), capture.Frame{})
	require.NoError(t, err)
	require.Len(t, hands, 1)
	tip, ok := hands[0].Keypoint(IndexFingerTip)
	require.True(t, ok)
	assert.Equal(t, 420.0, tip.X)
	assert.Equal(t, 200.0, tip.Y)

	px, py, ok := ReferencePalm.Point(hands[0])
	require.True(t, ok)
	assert.Equal(t, tip.X, px)
	assert.Equal(t, tip.Y, py)

	p.Move(-10000, 10000)
	x, y = p.Position()
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 480.0, y)

	p.SetHidden(true)
	hands, err = p.EstimateHands(context.Background(), capture.Frame{})
	require.NoError(t, err)
	assert.Empty(t, hands)
}

func TestPointer_SetPosition(t *testing.T) {
	t.Parallel()

	p := NewPointer(640, 480)
	p.SetPosition(550, 50)

	hands, err := p.EstimateHands(context.Background(), capture.Frame{})
	require.NoError(t, err)
	tip, _ := hands[0].Keypoint(IndexFingerTip)
	assert.Equal(t, 550.0, tip.X)
	assert.Equal(t, 50.0, tip.Y)
}

func TestRemote(t *testing.T) {
	t.Parallel()

	var got estimateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hands":[{"keypoints":[{"name":"index_finger_tip","x":450,"y":50,"score":0.9}]}]}`))
	}))
	defer srv.Close()

	frame := capture.Frame{Width: 640, Height: 480, ContentType: "image/jpeg", Data: []byte("img")}
	hands, err := NewRemote(srv.URL, time.Second).EstimateHands(context.Background(), frame)
	require.NoError(t, err)

	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img")), got.Image)
	assert.Equal(t, 640, got.Width)
	require.Len(t, hands, 1)
	tip, ok := hands[0].Keypoint(IndexFingerTip)
	require.True(t, ok)
	assert.Equal(t, 450.0, tip.X)
	assert.Equal(t, 0.9, tip.Score)
}

func TestRemote_Errors(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewRemote(srv.URL, time.Second).EstimateHands(context.Background(), capture.Frame{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model not loaded")
	})

	t.Run("bad json", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"hands":`))
		}))
		defer srv.Close()

		_, err := NewRemote(srv.URL, time.Second).EstimateHands(context.Background(), capture.Frame{})
		assert.ErrorContains(t, err, "decode response")
	})
}
