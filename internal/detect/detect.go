// Package detect estimates hand keypoints from camera frames.
package detect

import (
	"context"

	"github.com/tomz197/ballcatch/internal/capture"
)

// Keypoint names used by the game. Detectors may report more.
const (
	Wrist          = "wrist"
	IndexFingerMCP = "index_finger_mcp"
	IndexFingerTip = "index_finger_tip"
)

// Keypoint is a named landmark in camera pixel coordinates.
type Keypoint struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score float64 `json:"score,omitempty"`
}

// Hand is one detected hand.
type Hand struct {
	Keypoints []Keypoint `json:"keypoints"`
}

// Keypoint returns the landmark called name.
func (h Hand) Keypoint(name string) (Keypoint, bool) {
	for _, kp := range h.Keypoints {
		if kp.Name == name {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Detector finds hands in a frame. An empty result without error means no
// hand is visible.
type Detector interface {
	EstimateHands(ctx context.Context, frame capture.Frame) ([]Hand, error)
}
