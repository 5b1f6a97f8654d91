package game

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewGrid_Border(t *testing.T) {
	g := NewGrid(4, 5)
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			border := row == 0 || col == 0 || row == 3 || col == 4
			got := g.At(col, row)
			if border && got != CellWall {
				t.Fatalf("cell (%d,%d): got %d, want wall", col, row, got)
			}
			if !border && got != CellClear {
				t.Fatalf("cell (%d,%d): got %d, want clear", col, row, got)
			}
		}
	}
}

func TestGrid_OutOfBoundsIsWall(t *testing.T) {
	g := NewGrid(4, 4)
	for _, c := range [][2]int{{-1, 1}, {1, -1}, {4, 1}, {1, 4}} {
		if got := g.At(c[0], c[1]); got != CellWall {
			t.Fatalf("At(%d,%d): got %d, want wall", c[0], c[1], got)
		}
	}
}

func TestGrid_ClaimIgnoresWalls(t *testing.T) {
	g := NewGrid(4, 4)
	g.Claim(0, 0, 1)
	g.Claim(9, 9, 1)
	if got := g.At(0, 0); got != CellWall {
		t.Fatalf("claimed wall: got %d, want wall", got)
	}
	g.Claim(1, 1, 2)
	if got := g.At(1, 1); got != 2 {
		t.Fatalf("claimed clear cell: got %d, want 2", got)
	}
}

func TestGrid_ClaimPlayerRange(t *testing.T) {
	g := NewGrid(4, 4)
	g.Claim(1, 1, MaxPlayers)
	if got := g.At(1, 1); got != MaxPlayers {
		t.Fatalf("highest id: got %d, want %d", got, MaxPlayers)
	}
	for _, player := range []int{0, -3, MaxPlayers + 1, 255} {
		g.Claim(2, 2, player)
		if got := g.At(2, 2); got != CellClear {
			t.Fatalf("Claim with player %d: got %d, want clear", player, got)
		}
		if got := g.FillEnclosed(nil, player); got != 0 {
			t.Fatalf("FillEnclosed with player %d claimed %d cells", player, got)
		}
	}
	if got := g.PercentComplete(); got != 25 {
		t.Fatalf("percent: got %d, want 25", got)
	}
}

func TestGrid_PercentComplete(t *testing.T) {
	g := NewGrid(4, 5) // 6 interior cells
	if got := g.PercentComplete(); got != 0 {
		t.Fatalf("empty grid: got %d, want 0", got)
	}
	g.Claim(1, 1, 1)
	g.Claim(2, 1, 1)
	g.Claim(3, 1, 2)
	if got := g.PercentComplete(); got != 50 {
		t.Fatalf("total: got %d, want 50", got)
	}
	if got := g.PlayerPercentComplete(1); got != 33 {
		t.Fatalf("player 1: got %d, want 33", got)
	}
	if got := g.PlayerPercentComplete(2); got != 16 {
		t.Fatalf("player 2: got %d, want 16", got)
	}
	if got := g.PlayerPercentComplete(0); got != 0 {
		t.Fatalf("player 0: got %d, want 0", got)
	}
}

func TestGrid_CollideFindsWall(t *testing.T) {
	g := NewGrid(5, 5)
	wall, ok := g.Collide(Rect{Min: mgl32.Vec2{0.5, 2}, Max: mgl32.Vec2{1.5, 3}})
	if !ok {
		t.Fatal("expected collision with left wall")
	}
	want := g.CellRect(0, 2)
	if wall != want {
		t.Fatalf("wall: got %v, want %v", wall, want)
	}

	if _, ok := g.Collide(Rect{Min: mgl32.Vec2{1, 1}, Max: mgl32.Vec2{2, 2}}); ok {
		t.Fatal("rect touching the border must not collide")
	}
}

func TestGrid_FillEnclosed(t *testing.T) {
	g := NewGrid(5, 7) // interior rows 1..3, cols 1..5
	for col := 1; col <= 5; col++ {
		g.Claim(col, 2, 1)
	}
	balls := []Ball{{Pos: mgl32.Vec2{2.5, 1.5}}}

	claimed := g.FillEnclosed(balls, 1)
	if claimed != 5 {
		t.Fatalf("claimed: got %d, want 5", claimed)
	}
	for col := 1; col <= 5; col++ {
		if got := g.At(col, 1); got != CellClear {
			t.Fatalf("ball side (%d,1): got %d, want clear", col, got)
		}
		if got := g.At(col, 3); got != 1 {
			t.Fatalf("enclosed side (%d,3): got %d, want 1", col, got)
		}
	}
}

func TestGrid_FillEnclosedNoBallsClaimsEverything(t *testing.T) {
	g := NewGrid(4, 4)
	if got := g.FillEnclosed(nil, 3); got != 4 {
		t.Fatalf("claimed: got %d, want 4", got)
	}
	if got := g.PercentComplete(); got != 100 {
		t.Fatalf("percent: got %d, want 100", got)
	}
}

func TestGrid_CloneIndependent(t *testing.T) {
	g := NewGrid(4, 4)
	c := g.Clone()
	c.Claim(1, 1, 1)
	if g.At(1, 1) != CellClear {
		t.Fatal("clone shares cells with original")
	}
}

func TestRect_Intersects(t *testing.T) {
	a := Rect{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}}
	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlap", Rect{Min: mgl32.Vec2{0.5, 0.5}, Max: mgl32.Vec2{2, 2}}, true},
		{"touching edge", Rect{Min: mgl32.Vec2{1, 0}, Max: mgl32.Vec2{2, 1}}, false},
		{"disjoint", Rect{Min: mgl32.Vec2{3, 3}, Max: mgl32.Vec2{4, 4}}, false},
		{"contained", Rect{Min: mgl32.Vec2{0.25, 0.25}, Max: mgl32.Vec2{0.75, 0.75}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Fatalf("reversed: got %v, want %v", got, tt.want)
			}
		})
	}
}
