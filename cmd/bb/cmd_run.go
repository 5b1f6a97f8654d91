package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
)

func (a *app) cmdRun(args []string) int {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	players := flags.Int("players", 1, "number of players")
	seed := flags.Int64("seed", 0, "level layout seed (default: BOBBALL_SEED or random)")
	ticks := flags.Int("ticks", 0, "stop each level after this many ticks (0: until won or lost)")
	levels := flags.Int("levels", 1, "play up to this many levels while winning")
	loopback := flags.Bool("loopback", false, "mirror the match on a second engine over a delayed link")
	delay := flags.Int("delay", 8, "loopback delay in frames")
	save := flags.String("save", "", "save the match under this name when done")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return exitErr
	}
	if *players < 1 || *players > game.MaxPlayers || *levels < 1 || *ticks < 0 || *delay < 0 {
		fmt.Fprintf(os.Stderr, "bb: run: --players must be 1..%d, --levels positive, --ticks and --delay not negative\n", game.MaxPlayers)
		return exitErr
	}

	s := a.resolveSeed(*seed)
	host, err := a.newEngine("", s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bb: run: %v\n", err)
		return exitErr
	}
	if err := host.ResetForNewGame(*players); err != nil {
		fmt.Fprintf(os.Stderr, "bb: run: %v\n", err)
		return exitErr
	}

	var m *match
	if *loopback {
		peer, err := a.newEngine(host.Origin()+"-peer", s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bb: run: %v\n", err)
			return exitErr
		}
		if err := peer.ResetForNewGame(*players); err != nil {
			fmt.Fprintf(os.Stderr, "bb: run: %v\n", err)
			return exitErr
		}
		if m, err = newLoopbackMatch(host, peer, playerIDs(*players), *delay, a.log); err != nil {
			fmt.Fprintf(os.Stderr, "bb: run: %v\n", err)
			return exitErr
		}
	} else {
		m = newSoloMatch(host, playerIDs(*players), a.log)
	}
	defer m.Close()

	summaries, won, err := a.playLevels(m, *ticks, *levels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bb: run: %v\n", err)
		return exitErr
	}

	if *save != "" {
		if _, err := a.saveEngine(*save, host); err != nil {
			fmt.Fprintf(os.Stderr, "bb: run: %v\n", err)
			return exitErr
		}
	}

	if *jsonOut {
		printJSON(summaries)
	} else {
		for _, ls := range summaries {
			printSummary(ls)
		}
		if *save != "" {
			fmt.Printf("saved as %q\n", *save)
		}
	}
	if !won {
		return exitNotWon
	}
	return exitOK
}

// playLevels plays up to levels levels, moving on only after a win. Every
// finished level is recorded. It reports whether the last level was won.
func (a *app) playLevels(m *match, ticks, levels int) ([]levelSummary, bool, error) {
	var summaries []levelSummary
	for n := 1; ; n++ {
		m.play(ticks)
		ls := m.summary()
		if err := a.record(&ls); err != nil {
			return summaries, false, fmt.Errorf("record result: %w", err)
		}
		summaries = append(summaries, ls)

		won := m.host.Outcome() == game.Won
		if !won || n == levels {
			return summaries, won, nil
		}
		if err := m.nextLevel(); err != nil {
			return summaries, false, err
		}
	}
}
