package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BallSize is the diameter of a ball in grid units.
const BallSize float32 = 1

// Ball is a bouncing ball. Pos is the centre.
type Ball struct {
	Pos mgl32.Vec2 `msgpack:"pos"`
	Vel mgl32.Vec2 `msgpack:"vel"`
}

// Frame is the ball's bounding box.
func (b Ball) Frame() Rect {
	half := mgl32.Vec2{BallSize / 2, BallSize / 2}
	return Rect{Min: b.Pos.Sub(half), Max: b.Pos.Add(half)}
}

// Move advances the ball by one tick of velocity.
func (b *Ball) Move() {
	b.Pos = b.Pos.Add(b.Vel)
}

// Bounce reflects the ball off wall. The axis of least penetration decides
// which velocity component flips, and a component only flips while the ball
// is still moving into the wall so a ball that is already leaving is not
// pulled back in.
func (b *Ball) Bounce(wall Rect) {
	f := b.Frame()
	overlapX := math32.Min(f.Max[0], wall.Max[0]) - math32.Max(f.Min[0], wall.Min[0])
	overlapY := math32.Min(f.Max[1], wall.Max[1]) - math32.Max(f.Min[1], wall.Min[1])
	wallCentre := wall.Min.Add(wall.Max).Mul(0.5)

	if overlapX <= overlapY {
		toward := wallCentre[0] - b.Pos[0]
		if toward*b.Vel[0] > 0 {
			b.Vel[0] = -b.Vel[0]
		}
	}
	if overlapY <= overlapX {
		toward := wallCentre[1] - b.Pos[1]
		if toward*b.Vel[1] > 0 {
			b.Vel[1] = -b.Vel[1]
		}
	}
}

// Collide reports whether two balls overlap.
func (b Ball) Collide(o Ball) bool {
	d := b.Pos.Sub(o.Pos)
	return d.Dot(d) < BallSize*BallSize
}

// Collision updates b's velocity for an elastic collision of equal masses
// with other. other must be a copy taken before either ball was updated;
// calling a.Collision(bCopy) and b.Collision(aCopy) then yields the same
// result whichever runs first. Separating balls are left alone.
func (b *Ball) Collision(other Ball) {
	d := b.Pos.Sub(other.Pos)
	dist2 := d.Dot(d)
	if dist2 == 0 {
		return
	}
	approach := b.Vel.Sub(other.Vel).Dot(d)
	if approach >= 0 {
		return
	}
	b.Vel = b.Vel.Sub(d.Mul(approach / dist2))
}
