package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/store"
)

func (a *app) cmdResume(args []string) int {
	flags := flag.NewFlagSet("resume", flag.ContinueOnError)
	ticks := flags.Int("ticks", 0, "stop after this many ticks (0: until won or lost)")
	levels := flags.Int("levels", 1, "play up to this many levels while winning")
	save := flags.String("save", "", "save the match under this name when done")
	jsonOut := flags.Bool("json", false, "JSON output")
	pos, err := parseArgs(flags, args)
	if err != nil {
		return exitErr
	}
	if len(pos) != 1 || *levels < 1 {
		fmt.Fprintln(os.Stderr, "usage: bb resume <name> [--ticks T] [--levels L] [--save NAME] [--json]")
		return exitErr
	}
	name := pos[0]

	eng, err := a.loadEngine(name)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "bb: resume: no save named %q\n", name)
		return exitErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bb: resume: %v\n", err)
		return exitErr
	}

	start := eng.GameTime()
	var ids []int
	for _, p := range eng.CurrentState().Players {
		ids = append(ids, p.ID)
	}
	m := newSoloMatch(eng, ids, a.log)
	defer m.Close()

	summaries, won, err := a.playLevels(m, *ticks, *levels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bb: resume: %v\n", err)
		return exitErr
	}
	if *save != "" {
		if _, err := a.saveEngine(*save, eng); err != nil {
			fmt.Fprintf(os.Stderr, "bb: resume: %v\n", err)
			return exitErr
		}
	}

	if *jsonOut {
		printJSON(summaries)
	} else {
		fmt.Printf("resumed %q at game time %d\n", name, start)
		for _, ls := range summaries {
			printSummary(ls)
		}
	}
	if !won {
		return exitNotWon
	}
	return exitOK
}
