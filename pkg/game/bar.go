package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Direction is the axis a bar grows along.
type Direction uint8

const (
	Horizontal Direction = iota
	Vertical
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Section is one half of a bar. Section one grows toward the negative end of
// the axis, section two toward the positive end.
type Section struct {
	Active bool    `msgpack:"active"`
	Length float32 `msgpack:"length"`
}

// Bar is the wall a player is currently building.
type Bar struct {
	Active    bool       `msgpack:"active"`
	Direction Direction  `msgpack:"direction"`
	Origin    mgl32.Vec2 `msgpack:"origin"` // centre of the starting cell
	Speed     float32    `msgpack:"speed"`
	One       Section    `msgpack:"one"`
	Two       Section    `msgpack:"two"`
}

// NewBar starts a bar in the cell containing p.
func NewBar(p mgl32.Vec2, dir Direction, speed float32) Bar {
	origin := mgl32.Vec2{math32.Floor(p[0]) + 0.5, math32.Floor(p[1]) + 0.5}
	return Bar{
		Active:    true,
		Direction: dir,
		Origin:    origin,
		Speed:     speed,
		One:       Section{Active: true},
		Two:       Section{Active: true},
	}
}

// axis returns the index of the growth axis and of the cross axis.
func (b Bar) axis() (along, across int) {
	if b.Direction == Vertical {
		return 1, 0
	}
	return 0, 1
}

// SectionOneRect is the area covered by section one.
func (b Bar) SectionOneRect() Rect {
	along, across := b.axis()
	var r Rect
	r.Min[along] = b.Origin[along] - b.One.Length
	r.Max[along] = b.Origin[along]
	r.Min[across] = b.Origin[across] - 0.5
	r.Max[across] = b.Origin[across] + 0.5
	return r
}

// SectionTwoRect is the area covered by section two.
func (b Bar) SectionTwoRect() Rect {
	along, across := b.axis()
	var r Rect
	r.Min[along] = b.Origin[along]
	r.Max[along] = b.Origin[along] + b.Two.Length
	r.Min[across] = b.Origin[across] - 0.5
	r.Max[across] = b.Origin[across] + 0.5
	return r
}

// Hits reports whether r overlaps a section that is still growing.
func (b Bar) Hits(r Rect) bool {
	if !b.Active {
		return false
	}
	if b.One.Active && b.SectionOneRect().Intersects(r) {
		return true
	}
	return b.Two.Active && b.SectionTwoRect().Intersects(r)
}

// Break destroys the bar. Cells already claimed by finished sections stay
// claimed.
func (b *Bar) Break() {
	b.Active = false
	b.One.Active = false
	b.Two.Active = false
}

// Move grows each active section by Speed. A section whose leading edge
// enters a non-clear cell stops there and every cell it spans is claimed
// for player. The starting cell never stops a section, since the first
// section to finish claims it. Returns the number of cells claimed.
func (b *Bar) Move(g *Grid, player int) int {
	if !b.Active {
		return 0
	}
	along, _ := b.axis()
	originCol, originRow := g.CellOf(b.Origin)
	originIdx := originCol
	if along == 1 {
		originIdx = originRow
	}
	at := func(i int) int8 {
		if along == 1 {
			return g.At(originCol, i)
		}
		return g.At(i, originRow)
	}
	claim := func(from, to int) int {
		n := 0
		for i := from; i <= to; i++ {
			if at(i) != CellClear {
				continue
			}
			if along == 1 {
				g.Claim(originCol, i, player)
			} else {
				g.Claim(i, originRow, player)
			}
			n++
		}
		return n
	}

	claimed := 0
	if b.One.Active {
		b.One.Length += b.Speed
		edge := b.Origin[along] - b.One.Length
		if hit := int(math32.Floor(edge)); hit != originIdx && at(hit) != CellClear {
			b.One.Active = false
			b.One.Length = b.Origin[along] - float32(hit+1)
			claimed += claim(hit+1, originIdx)
		}
	}
	if b.Two.Active {
		b.Two.Length += b.Speed
		edge := b.Origin[along] + b.Two.Length
		if hit := int(math32.Ceil(edge)) - 1; hit != originIdx && at(hit) != CellClear {
			b.Two.Active = false
			b.Two.Length = float32(hit) - b.Origin[along]
			claimed += claim(originIdx, hit-1)
		}
	}
	if !b.One.Active && !b.Two.Active {
		b.Active = false
	}
	return claimed
}
