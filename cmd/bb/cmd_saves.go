package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/model"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/store"
)

func (a *app) cmdSaves(args []string) int {
	flags := flag.NewFlagSet("saves", flag.ContinueOnError)
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return exitErr
	}

	saves, err := a.store.ListSaves()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bb: saves: %v\n", err)
		return exitErr
	}
	if *jsonOut {
		if saves == nil {
			saves = []model.Save{}
		}
		printJSON(saves)
		return exitOK
	}
	if len(saves) == 0 {
		fmt.Println("no saves")
		return exitOK
	}
	for _, sv := range saves {
		fmt.Printf("%-20s level=%-3d tick=%-6d origin=%-12s %6dB  %s\n",
			sv.Name, sv.Level, sv.Tick, shortOrigin(sv.Origin), sv.Size,
			sv.SavedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return exitOK
}

func (a *app) cmdResults(args []string) int {
	flags := flag.NewFlagSet("results", flag.ContinueOnError)
	limit := flags.Int("limit", 20, "maximum results to show")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return exitErr
	}

	results, err := a.store.ListResults(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bb: results: %v\n", err)
		return exitErr
	}
	if *jsonOut {
		if results == nil {
			results = []model.Result{}
		}
		printJSON(results)
		return exitOK
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return exitOK
	}
	for _, r := range results {
		fmt.Printf("#%-4d level=%-3d %-7s tick=%-6d complete=%3d%% best=%-6d origin=%-12s %s\n",
			r.ID, r.Level, r.Outcome, r.Tick, r.Percent, r.Best(), shortOrigin(r.Origin),
			r.RecordedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("(%d of %d)\n", len(results), a.store.CountResults())
	return exitOK
}

func (a *app) cmdRm(args []string) int {
	flags := flag.NewFlagSet("rm", flag.ContinueOnError)
	pos, err := parseArgs(flags, args)
	if err != nil {
		return exitErr
	}
	if len(pos) < 1 {
		fmt.Fprintln(os.Stderr, "usage: bb rm <name> [name...]")
		return exitErr
	}
	code := exitOK
	for _, name := range pos {
		err := a.store.DeleteSave(name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Fprintf(os.Stderr, "bb: rm: no save named %q\n", name)
			code = exitErr
		case err != nil:
			fmt.Fprintf(os.Stderr, "bb: rm: %v\n", err)
			code = exitErr
		default:
			fmt.Printf("removed %s\n", name)
		}
	}
	return code
}

// shortOrigin trims UUID origins for tables.
func shortOrigin(origin string) string {
	if len(origin) > 12 {
		return origin[:8] + "…"
	}
	return origin
}
