package object

import (
	"time"

	"github.com/tomz197/ballcatch/internal/draw"
)

// UpdateContext provides all the information an object needs during update.
type UpdateContext struct {
	Delta     time.Duration
	Playfield Playfield
}

// DrawContext provides drawing resources for objects.
type DrawContext struct {
	Surface draw.Surface
}

// Playfield is the logical area balls fall through, in camera pixels.
type Playfield struct {
	Width  float64
	Height float64
}

// Contains reports whether (x, y) lies inside the playfield.
func (p Playfield) Contains(x, y float64) bool {
	return x >= 0 && x <= p.Width && y >= 0 && y <= p.Height
}

// Object is a drawable and updatable game entity.
type Object interface {
	// Update updates the object state. Returns true if the object should be removed.
	Update(ctx UpdateContext) (remove bool)

	// Draw draws the object onto ctx.Surface.
	Draw(ctx DrawContext)
}

// Releasable is implemented by pooled objects that can be returned to a pool.
type Releasable interface {
	// Release returns the object to its pool for reuse.
	Release()
}

// ReleaseObject releases an object back to its pool if it implements Releasable.
func ReleaseObject(obj Object) {
	if r, ok := obj.(Releasable); ok {
		r.Release()
	}
}

// UpdateAll updates every object and keeps those that are not removed.
// Removed objects are released. The returned slice reuses objs' storage.
func UpdateAll[T Object](objs []T, ctx UpdateContext) []T {
	kept := objs[:0]
	for _, obj := range objs {
		if obj.Update(ctx) {
			ReleaseObject(obj)
			continue
		}
		kept = append(kept, obj)
	}
	clear(objs[len(kept):])
	return kept
}

// ReleaseAll returns every pooled object in objs to its pool.
func ReleaseAll[T Object](objs []T) {
	for _, obj := range objs {
		ReleaseObject(obj)
	}
}

// DrawAll draws every object in order.
func DrawAll[T Object](objs []T, ctx DrawContext) {
	for _, obj := range objs {
		obj.Draw(ctx)
	}
}
