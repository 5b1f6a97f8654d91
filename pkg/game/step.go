package game

// Step runs one tick of physics and advances Tick. Events due at the current
// tick must already have been applied.
//
// Order matters and is fixed: bars move and claim territory (players in
// slice order), then each ball moves and is checked against bars and walls,
// then ball pairs collide.
func (s *State) Step() {
	s.moveBars()
	s.moveBalls()
	s.collideBalls()
	s.Tick++
}

func (s *State) moveBars() {
	for i := range s.Players {
		p := &s.Players[i]
		if p.Bar.Move(&s.Grid, p.ID) > 0 {
			s.Grid.FillEnclosed(s.Balls, p.ID)
		}
	}
}

func (s *State) moveBalls() {
	for i := range s.Balls {
		b := &s.Balls[i]
		b.Move()

		frame := b.Frame()
		for j := range s.Players {
			p := &s.Players[j]
			if p.Bar.Hits(frame) {
				p.Bar.Break()
				if p.Lives > 0 {
					p.Lives--
				}
			}
		}

		if wall, ok := s.Grid.Collide(frame); ok {
			b.Bounce(wall)
		}
	}
}

// collideBalls resolves each unordered pair once. Both balls compute their
// new velocity from copies taken before either is updated.
func (s *State) collideBalls() {
	for i := 0; i < len(s.Balls); i++ {
		for j := i + 1; j < len(s.Balls); j++ {
			if !s.Balls[i].Collide(s.Balls[j]) {
				continue
			}
			first, second := s.Balls[i], s.Balls[j]
			s.Balls[i].Collision(second)
			s.Balls[j].Collision(first)
		}
	}
}
