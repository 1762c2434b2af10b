package object

import (
	"math/rand"

	"github.com/tomz197/ballcatch/internal/loop/config"
)

// BallSpawner creates balls at the top edge of the playfield.
// It is not safe for concurrent use; callers serialize Spawn.
type BallSpawner struct {
	rng     *rand.Rand
	profile config.DifficultyProfile
	width   float64
	nextID  uint64
}

// NewBallSpawner creates a spawner for a playfield of the given width.
func NewBallSpawner(rng *rand.Rand, width float64, d config.Difficulty) *BallSpawner {
	return &BallSpawner{
		rng:     rng,
		profile: config.Profile(d),
		width:   width,
	}
}

// Spawn returns a new ball at a random x on the top edge. Its speed is
// (BaseSpeed + U[0, SpeedJitter)) times the difficulty multiplier and it
// is a penalty ball with the difficulty's penalty probability.
func (s *BallSpawner) Spawn() *Ball {
	s.nextID++
	kind := Benign
	x := s.rng.Float64() * s.width
	speed := (config.BaseSpeed + s.rng.Float64()*config.SpeedJitter) * s.profile.SpeedMultiplier
	if s.rng.Float64() < s.profile.PenaltyProbability {
		kind = Penalty
	}
	return &Ball{
		ID:     s.nextID,
		X:      x,
		Y:      0,
		Radius: config.BallRadius,
		Speed:  speed,
		Kind:   kind,
	}
}
