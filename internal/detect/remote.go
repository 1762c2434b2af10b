package detect

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomz197/ballcatch/internal/capture"
)

// Remote sends frames to a pose-estimation HTTP endpoint.
//
// Request:  POST {"image": "<base64>", "content_type": "image/jpeg", "width": 640, "height": 480}
// Response: {"hands": [{"keypoints": [{"name": "index_finger_tip", "x": 320, "y": 240}]}]}
type Remote struct {
	Endpoint string
	Client   *http.Client
}

var _ Detector = (*Remote)(nil)

// NewRemote creates a detector for endpoint with a per-request timeout.
func NewRemote(endpoint string, timeout time.Duration) *Remote {
	return &Remote{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

type estimateRequest struct {
	Image       string `json:"image"`
	ContentType string `json:"content_type,omitempty"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

type estimateResponse struct {
	Hands []Hand `json:"hands"`
}

// EstimateHands posts the frame and decodes the detected hands.
func (r *Remote) EstimateHands(ctx context.Context, frame capture.Frame) ([]Hand, error) {
	body, err := json.Marshal(estimateRequest{
		Image:       base64.StdEncoding.EncodeToString(frame.Data),
		ContentType: frame.ContentType,
		Width:       frame.Width,
		Height:      frame.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("estimate hands: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("estimate hands: %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var out estimateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Hands, nil
}
