package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 5.0, Distance(0, 0, 3, 4), 1e-9)
	assert.InDelta(t, 25.0, DistanceSquared(0, 0, 3, 4), 1e-9)
}

func TestWithinReach_Boundary(t *testing.T) {
	t.Parallel()

	// radius 20 + tolerance 10 = 30
	assert.True(t, WithinReach(129.9, 50, 100, 50, 20, 10))
	assert.False(t, WithinReach(130, 50, 100, 50, 20, 10), "exactly on the boundary is a miss")
	assert.False(t, WithinReach(190, 50, 100, 50, 20, 10))
}

func TestMirrorX(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 190.0, MirrorX(640, 450))
	assert.Equal(t, 90.0, MirrorX(640, 550))
	assert.Equal(t, 450.0, MirrorX(640, MirrorX(640, 450)))
}

func TestMidpoint(t *testing.T) {
	t.Parallel()

	x, y := Midpoint(10, 20, 30, 60)
	assert.Equal(t, 20.0, x)
	assert.Equal(t, 40.0, y)
}
