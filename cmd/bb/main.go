// Command bb is the headless bobball driver: it runs matches between
// scripted players, optionally over a delayed loopback link or a websocket
// to another process, and keeps saves and results in SQLite.
package main

import (
	"fmt"
	"os"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		printUsage()
		return
	case "--version", "-v", "version":
		fmt.Println("bb", version)
		return
	}

	a, err := newApp()
	if err != nil {
		fatal("%v", err)
	}
	code := a.dispatch(os.Args[1], os.Args[2:])
	a.Close()
	os.Exit(code)
}

func (a *app) dispatch(cmd string, args []string) int {
	switch cmd {
	// Matches
	case "run":
		return a.cmdRun(args)
	case "resume":
		return a.cmdResume(args)
	case "peer":
		return a.cmdPeer(args)

	// Storage
	case "saves", "ls":
		return a.cmdSaves(args)
	case "results":
		return a.cmdResults(args)
	case "rm":
		return a.cmdRm(args)

	default:
		fmt.Fprintf(os.Stderr, "bb: unknown command %q\n", cmd)
		fmt.Fprintln(os.Stderr, "Run 'bb --help' for usage.")
		return 1
	}
}

func printUsage() {
	fmt.Print(`bb — headless bobball simulation driver

Deterministic lockstep-free multiplayer: every peer simulates the level,
late events roll the simulation back to a checkpoint and replay.

Usage:
  bb <command> [flags]

Matches:
  run [--players N] [--seed S] [--ticks T] [--levels L]
      [--loopback] [--delay D] [--save NAME]
                            Run a match between scripted players
  resume <name> [--ticks T] [--levels L] [--save NAME]
                            Continue a saved match
  peer (--listen ADDR | --connect URL) [--seed S] [--ticks T]
                            Real-time match against another bb process

Storage:
  saves                     List saved matches
  results [--limit N]       List recorded level results
  rm <name>                 Delete a saved match

Aliases:
  ls = saves

Environment:
  BOBBALL_DB             SQLite database path (default: .bobball/bobball.db)
  BOBBALL_ORIGIN         Peer identity stamped on events (default: random UUID)
  BOBBALL_SEED           Level layout seed (default: random)
  BOBBALL_FRAME          Real-time frame interval (default: 16ms)
  BOBBALL_LOG_LEVEL      debug, info, warn, error (default: info)
  BOBBALL_LOG_FORMAT     console or json (default: console)
  BOBBALL_METRICS_ADDR   Serve Prometheus metrics on this address
  BOBBALL_SENTRY_DSN     Report panics to Sentry
  BOBBALL_ROWS, BOBBALL_COLUMNS, BOBBALL_LEVEL_DURATION, BOBBALL_BALL_SPEED,
  BOBBALL_BAR_SPEED, BOBBALL_RETAINED_CHECKPOINTS, BOBBALL_CHECKPOINT_FREQ,
  BOBBALL_PERCENT_COMPLETED
                         Simulation constants; peers must agree on them

All commands support --json for machine-readable output.

Exit codes:
  0  success (for matches: the level was won)
  1  error
  2  match finished without a win
`)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "bb: "+format+"\n", args...)
	os.Exit(1)
}
