package loop

import (
	"github.com/tomz197/ballcatch/internal/detect"
	"github.com/tomz197/ballcatch/internal/loop/config"
	"github.com/tomz197/ballcatch/internal/object"
	"github.com/tomz197/ballcatch/internal/physics"
)

// catchPoint returns the reference point of the first hand in playfield
// coordinates. The camera image is mirrored, so x becomes width - x.
func catchPoint(hands []detect.Hand, ref detect.Reference, width float64) (x, y float64, ok bool) {
	if len(hands) == 0 {
		return 0, 0, false
	}
	camX, camY, ok := ref.Point(hands[0])
	if !ok {
		return 0, 0, false
	}
	return physics.MirrorX(width, camX), camY, true
}

// catchBalls splits balls into those the point (x, y) misses and those it
// catches. kept reuses the storage of balls.
func catchBalls(balls []*object.Ball, x, y float64) (kept, caught []*object.Ball) {
	kept = balls[:0]
	for _, b := range balls {
		if b.Touches(x, y, config.HitTolerance) {
			caught = append(caught, b)
			continue
		}
		kept = append(kept, b)
	}
	clear(balls[len(kept):])
	return kept, caught
}

// scoreFor returns the score change for catching a ball of kind k.
func scoreFor(k object.Kind) int {
	if k == object.Penalty {
		return config.ScorePenalty
	}
	return config.ScoreBenign
}
