package object

import (
	"math"
	"math/rand"
	"sync"

	"github.com/tomz197/ballcatch/internal/draw"
)

// particleDrag is the share of velocity a particle keeps after one second.
const particleDrag = 0.05

// particleFadeAt is the share of its life after which a particle is no
// longer drawn.
const particleFadeAt = 0.75

var particles = sync.Pool{New: func() any { return new(Particle) }}

// Particle is one spark of the burst shown where a ball was caught.
type Particle struct {
	X, Y   float64
	VX, VY float64 // pixels per second
	Age    float64 // seconds since spawn
	Life   float64 // seconds until it disappears
	Color  draw.Color
}

var (
	_ Object     = (*Particle)(nil)
	_ Releasable = (*Particle)(nil)
)

func newParticle(x, y, vx, vy, life float64, c draw.Color) *Particle {
	p := particles.Get().(*Particle)
	*p = Particle{X: x, Y: y, VX: vx, VY: vy, Life: life, Color: c}
	return p
}

// Release puts p back into the shared pool. p must not be used afterwards.
func (p *Particle) Release() {
	particles.Put(p)
}

// SpawnBurst returns count particles leaving (x, y) in random directions.
// Each gets between half and one and a half times speed, and between half
// and the whole of lifetime.
func SpawnBurst(rng *rand.Rand, x, y float64, count int, speed, lifetime float64, c draw.Color) []*Particle {
	burst := make([]*Particle, count)
	for i := range burst {
		sin, cos := math.Sincos(rng.Float64() * 2 * math.Pi)
		v := speed * (0.5 + rng.Float64())
		burst[i] = newParticle(x, y, cos*v, sin*v, lifetime*(0.5+0.5*rng.Float64()), c)
	}
	return burst
}

// Update ages the particle and slows it down. It is removed once its life
// is over or it leaves the playfield.
func (p *Particle) Update(ctx UpdateContext) bool {
	dt := ctx.Delta.Seconds()
	p.Age += dt
	if p.Age >= p.Life {
		return true
	}

	keep := math.Pow(particleDrag, dt)
	p.VX *= keep
	p.VY *= keep
	p.X += p.VX * dt
	p.Y += p.VY * dt
	return !ctx.Playfield.Contains(p.X, p.Y)
}

func (p *Particle) Draw(ctx DrawContext) {
	if p.Age > p.Life*particleFadeAt {
		return
	}
	ctx.Surface.Plot(p.X, p.Y, p.Color)
}
