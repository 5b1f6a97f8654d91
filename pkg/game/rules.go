package game

// Outcome of a level.
type Outcome int

const (
	Lost    Outcome = -1
	Running Outcome = 0
	Won     Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case Lost:
		return "lost"
	case Won:
		return "won"
	default:
		return "running"
	}
}

// Rules are the level-scoped win/loss parameters.
type Rules struct {
	LevelDuration    int   // ticks
	PercentCompleted int   // win threshold
	Tracked          []int // player ids whose death ends the level
}

// TimeLeft is the level duration minus the current tick.
func (r Rules) TimeLeft(s *State) int {
	return r.LevelDuration - s.Tick
}

// Outcome evaluates s without modifying it. A state at tick 0 has not been
// initialised yet and is always running. Loss wins over a simultaneous win.
func (r Rules) Outcome(s *State) Outcome {
	if s.Tick == 0 {
		return Running
	}
	if r.TimeLeft(s) <= 0 {
		return Lost
	}
	for _, id := range r.Tracked {
		if p := s.Player(id); p != nil && p.Lives < 1 {
			return Lost
		}
	}
	if s.Grid.PercentComplete() >= r.PercentCompleted {
		return Won
	}
	return Running
}

// LevelBonus is the score a player earns for finishing the level in s:
// completion percent × seconds left × level, truncated.
func (r Rules) LevelBonus(s *State, player int) int {
	left := float64(r.TimeLeft(s)) / 1000.0
	return int(float64(s.Grid.PlayerPercentComplete(player)) * left * float64(s.Level))
}

// ScoreLevel credits the level bonus to every player that still has lives
// and has not been scored for this level yet.
func (r Rules) ScoreLevel(s *State) {
	for i := range s.Players {
		p := &s.Players[i]
		if p.ScoredLevel >= s.Level || p.Lives <= 0 {
			continue
		}
		p.Score += r.LevelBonus(s, p.ID)
		p.ScoredLevel = s.Level
	}
}
