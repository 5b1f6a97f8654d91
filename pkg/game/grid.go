// Package game holds the deterministic simulation state of a BobBall level:
// the ownership grid, the balls, the players and their bars, and the
// per-tick physics that advances them.
//
// Everything in this package is a pure function of its inputs. There is no
// wall-clock time, no global randomness, and no map iteration on any path
// that mutates state, so two peers holding equal states and applying the
// same events in the same order compute bit-identical results. The rollback
// engine depends on this property.
package game

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Cell values. Positive values are the id of the owning player.
const (
	CellWall  int8 = -1
	CellClear int8 = 0
)

// Limits on state size. Player ids are stored in int8 cells.
const (
	MaxPlayers  = 127
	MaxGridSide = 1024
	MaxLevel    = 1000
)

// Rect is an axis-aligned rectangle in grid units.
type Rect struct {
	Min mgl32.Vec2 `msgpack:"min"`
	Max mgl32.Vec2 `msgpack:"max"`
}

// Intersects reports whether r and o overlap with positive area. Touching
// edges do not count.
func (r Rect) Intersects(o Rect) bool {
	return r.Min[0] < o.Max[0] && o.Min[0] < r.Max[0] &&
		r.Min[1] < o.Max[1] && o.Min[1] < r.Max[1]
}

// Grid is the territory bitmap. Border cells are walls; interior cells are
// either clear or owned by a player.
type Grid struct {
	Rows    int    `msgpack:"rows"`
	Columns int    `msgpack:"columns"`
	Cells   []int8 `msgpack:"cells"` // row-major
}

// NewGrid returns a grid whose border is wall and whose interior is clear.
func NewGrid(rows, columns int) Grid {
	g := Grid{Rows: rows, Columns: columns, Cells: make([]int8, rows*columns)}
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			if row == 0 || col == 0 || row == rows-1 || col == columns-1 {
				g.Cells[row*columns+col] = CellWall
			}
		}
	}
	return g
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	c := g
	c.Cells = append([]int8(nil), g.Cells...)
	return c
}

// Width is the grid width in grid units.
func (g Grid) Width() float32 { return float32(g.Columns) }

// Height is the grid height in grid units.
func (g Grid) Height() float32 { return float32(g.Rows) }

// At returns the cell at (col, row). Out-of-bounds cells read as wall.
func (g Grid) At(col, row int) int8 {
	if col < 0 || row < 0 || col >= g.Columns || row >= g.Rows {
		return CellWall
	}
	return g.Cells[row*g.Columns+col]
}

// Claim assigns an interior cell to player. Walls, cells outside the grid
// and player ids outside 1..MaxPlayers are ignored.
func (g *Grid) Claim(col, row, player int) {
	if player < 1 || player > MaxPlayers || g.At(col, row) == CellWall {
		return
	}
	g.Cells[row*g.Columns+col] = int8(player)
}

// CellOf returns the cell containing point p.
func (g Grid) CellOf(p mgl32.Vec2) (col, row int) {
	return int(math32.Floor(p[0])), int(math32.Floor(p[1]))
}

// SquareAt returns the value of the cell containing p.
func (g Grid) SquareAt(p mgl32.Vec2) int8 {
	col, row := g.CellOf(p)
	return g.At(col, row)
}

// CellRect is the frame of cell (col, row).
func (g Grid) CellRect(col, row int) Rect {
	return Rect{
		Min: mgl32.Vec2{float32(col), float32(row)},
		Max: mgl32.Vec2{float32(col + 1), float32(row + 1)},
	}
}

// Collide returns the frame of the first non-clear cell overlapping r, in
// row-major order.
func (g Grid) Collide(r Rect) (Rect, bool) {
	minCol, minRow := int(math32.Floor(r.Min[0])), int(math32.Floor(r.Min[1]))
	maxCol, maxRow := int(math32.Floor(r.Max[0])), int(math32.Floor(r.Max[1]))
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if g.At(col, row) == CellClear {
				continue
			}
			cell := g.CellRect(col, row)
			if cell.Intersects(r) {
				return cell, true
			}
		}
	}
	return Rect{}, false
}

func (g Grid) interior() int {
	if g.Rows < 3 || g.Columns < 3 {
		return 0
	}
	return (g.Rows - 2) * (g.Columns - 2)
}

// PercentComplete is the integer percentage of interior cells owned by any
// player.
func (g Grid) PercentComplete() int {
	total := g.interior()
	if total == 0 {
		return 0
	}
	owned := 0
	for _, c := range g.Cells {
		if c > 0 {
			owned++
		}
	}
	return owned * 100 / total
}

// PlayerPercentComplete is the integer percentage of interior cells owned by
// player.
func (g Grid) PlayerPercentComplete(player int) int {
	total := g.interior()
	if total == 0 || player <= 0 {
		return 0
	}
	owned := 0
	for _, c := range g.Cells {
		if int(c) == player {
			owned++
		}
	}
	return owned * 100 / total
}

// FillEnclosed claims every clear region that contains no ball for player
// and returns the number of cells claimed. Regions are 4-connected.
func (g *Grid) FillEnclosed(balls []Ball, player int) int {
	if player < 1 || player > MaxPlayers {
		return 0
	}
	reached := make([]bool, len(g.Cells))
	var stack []int
	push := func(col, row int) {
		if g.At(col, row) != CellClear {
			return
		}
		i := row*g.Columns + col
		if reached[i] {
			return
		}
		reached[i] = true
		stack = append(stack, i)
	}

	for _, b := range balls {
		f := b.Frame()
		minCol, minRow := int(math32.Floor(f.Min[0])), int(math32.Floor(f.Min[1]))
		maxCol, maxRow := int(math32.Floor(f.Max[0])), int(math32.Floor(f.Max[1]))
		for row := minRow; row <= maxRow; row++ {
			for col := minCol; col <= maxCol; col++ {
				if g.CellRect(col, row).Intersects(f) {
					push(col, row)
				}
			}
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		col, row := i%g.Columns, i/g.Columns
		push(col-1, row)
		push(col+1, row)
		push(col, row-1)
		push(col, row+1)
	}

	claimed := 0
	for i, c := range g.Cells {
		if c == CellClear && !reached[i] {
			g.Cells[i] = int8(player)
			claimed++
		}
	}
	return claimed
}
