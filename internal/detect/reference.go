package detect

import (
	"fmt"
	"strings"

	"github.com/tomz197/ballcatch/internal/physics"
)

// Reference selects which point of a hand catches balls.
type Reference int

const (
	// ReferenceTip uses the index fingertip.
	ReferenceTip Reference = iota
	// ReferencePalm uses the midpoint between wrist and index knuckle.
	ReferencePalm
)

func (r Reference) String() string {
	if r == ReferencePalm {
		return "palm"
	}
	return "tip"
}

// ParseReference converts "tip" or "palm" to a Reference.
func ParseReference(s string) (Reference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tip", "":
		return ReferenceTip, nil
	case "palm":
		return ReferencePalm, nil
	default:
		return ReferenceTip, fmt.Errorf("unknown reference point %q", s)
	}
}

// Point returns the reference point of h in camera coordinates, or false
// when the needed keypoints are missing.
func (r Reference) Point(h Hand) (x, y float64, ok bool) {
	switch r {
	case ReferencePalm:
		wrist, ok1 := h.Keypoint(Wrist)
		mcp, ok2 := h.Keypoint(IndexFingerMCP)
		if !ok1 || !ok2 {
			return 0, 0, false
		}
		x, y = physics.Midpoint(wrist.X, wrist.Y, mcp.X, mcp.Y)
		return x, y, true
	default:
		tip, ok := h.Keypoint(IndexFingerTip)
		if !ok {
			return 0, 0, false
		}
		return tip.X, tip.Y, true
	}
}
