package game

import "testing"

var testRules = Rules{LevelDuration: 20000, PercentCompleted: 75, Tracked: []int{1}}

// rulesState is a two-player state on a grid with eight interior cells.
func rulesState(tick int) *State {
	s := NewState(2)
	s.Grid = NewGrid(4, 6)
	s.Players[0].Lives = 2
	s.Players[1].Lives = 2
	s.Tick = tick
	return s
}

func claim(s *State, n, player int) {
	for col := 1; col <= 4 && n > 0; col++ {
		for row := 1; row <= 2 && n > 0; row++ {
			if s.Grid.At(col, row) == CellClear {
				s.Grid.Claim(col, row, player)
				n--
			}
		}
	}
}

func TestRules_Outcome(t *testing.T) {
	tests := []struct {
		name string
		prep func(s *State)
		want Outcome
	}{
		{"running", func(*State) {}, Running},
		{"last life, no collision", func(s *State) { s.Players[0].Lives = 1 }, Running},
		{"not started", func(s *State) { s.Tick = 0; s.Players[0].Lives = 0 }, Running},
		{"time exactly up", func(s *State) { s.Tick = 20000 }, Lost},
		{"time past", func(s *State) { s.Tick = 20500 }, Lost},
		{"one tick left", func(s *State) { s.Tick = 19999 }, Running},
		{"tracked player dead", func(s *State) { s.Players[0].Lives = 0 }, Lost},
		{"untracked player dead", func(s *State) { s.Players[1].Lives = 0 }, Running},
		{"threshold reached", func(s *State) { claim(s, 6, 1) }, Won},
		{"below threshold", func(s *State) { claim(s, 5, 2) }, Running},
		{"loss beats win", func(s *State) { claim(s, 8, 1); s.Players[0].Lives = 0 }, Lost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := rulesState(100)
			tt.prep(s)
			if got := testRules.Outcome(s); got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRules_TimeLeft(t *testing.T) {
	if got := testRules.TimeLeft(rulesState(1500)); got != 18500 {
		t.Fatalf("got %d, want 18500", got)
	}
}

func TestRules_ScoreLevel(t *testing.T) {
	s := rulesState(10000)
	s.Level = 2
	claim(s, 4, 1) // 50%
	claim(s, 2, 2) // 25%

	testRules.ScoreLevel(s)
	if got := s.Player(1).Score; got != 1000 {
		t.Fatalf("player 1 score: got %d, want 1000", got)
	}
	if got := s.Player(2).Score; got != 500 {
		t.Fatalf("player 2 score: got %d, want 500", got)
	}

	testRules.ScoreLevel(s)
	if got := s.Player(1).Score; got != 1000 {
		t.Fatalf("level scored twice: got %d, want 1000", got)
	}
	if got := s.Player(1).ScoredLevel; got != 2 {
		t.Fatalf("scored level: got %d, want 2", got)
	}
}

func TestRules_ScoreLevelSkipsDeadPlayers(t *testing.T) {
	s := rulesState(10000)
	claim(s, 4, 2)
	s.Players[1].Lives = 0
	testRules.ScoreLevel(s)
	if got := s.Player(2).Score; got != 0 {
		t.Fatalf("dead player scored: got %d, want 0", got)
	}
	if got := s.Player(2).ScoredLevel; got != 0 {
		t.Fatalf("dead player marked scored: got %d, want 0", got)
	}
}

func TestOutcome_String(t *testing.T) {
	for o, want := range map[Outcome]string{Lost: "lost", Running: "running", Won: "won"} {
		if got := o.String(); got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}
