package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/actor"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/transport"
)

func (a *app) cmdPeer(args []string) int {
	flags := flag.NewFlagSet("peer", flag.ContinueOnError)
	listen := flags.String("listen", "", "wait for the other peer on this address (host:port)")
	connect := flags.String("connect", "", "connect to a listening peer (ws://host:port/)")
	players := flags.Int("players", 2, "number of players; the listener plays 1, the connector the rest")
	seed := flags.Int64("seed", 0, "level layout seed; both peers must use the same one")
	ticks := flags.Int("ticks", 0, "stop after this many ticks (0: until won or lost)")
	jsonOut := flags.Bool("json", false, "JSON output")
	if err := flags.Parse(args); err != nil {
		return exitErr
	}
	if (*listen == "") == (*connect == "") {
		fmt.Fprintln(os.Stderr, "usage: bb peer (--listen ADDR | --connect URL) [--seed S] [--ticks T] [--players N]")
		return exitErr
	}
	if *players < 2 || *players > game.MaxPlayers {
		fmt.Fprintf(os.Stderr, "bb: peer: --players must be 2..%d\n", game.MaxPlayers)
		return exitErr
	}
	if *connect != "" && *seed == 0 && a.cfg.Seed == 0 {
		fmt.Fprintln(os.Stderr, "bb: peer: --connect needs the listener's --seed (or BOBBALL_SEED)")
		return exitErr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := a.resolveSeed(*seed)
	var (
		ch    transport.Channel
		local []int
		err   error
	)
	if *listen != "" {
		fmt.Fprintf(os.Stderr, "waiting for peer on %s (seed %d, ctrl-c to stop)\n", *listen, s)
		ch, err = a.awaitPeer(ctx, *listen)
		local = []int{1}
	} else {
		ch, err = transport.Dial(ctx, *connect, a.log)
		local = playerIDs(*players)[1:]
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "bb: peer: %v\n", err)
		return exitErr
	}

	eng, err := a.newEngine("", s)
	if err != nil {
		ch.Close()
		fmt.Fprintf(os.Stderr, "bb: peer: %v\n", err)
		return exitErr
	}
	if err := eng.ResetForNewGame(*players); err != nil {
		ch.Close()
		fmt.Fprintf(os.Stderr, "bb: peer: %v\n", err)
		return exitErr
	}
	net, err := actor.NewNetwork(eng, ch, a.log)
	if err != nil {
		ch.Close()
		fmt.Fprintf(os.Stderr, "bb: peer: %v\n", err)
		return exitErr
	}
	defer net.Close()

	limit := *ticks
	run := actor.NewRunner(eng, actor.RunnerOptions{
		Frame: a.cfg.Frame,
		Until: func(gameTime int, outcome game.Outcome) bool {
			return outcome != game.Running || (limit > 0 && gameTime >= limit)
		},
	}, a.log)
	for _, id := range local {
		run.Add(fmt.Sprintf("ai-%d", id), actor.NewAI(eng, id, 0, 0, a.log))
	}
	run.Add("net", net)

	a.log.Info("match started", zap.String("origin", eng.Origin()), zap.Int64("seed", s), zap.Ints("players", local))
	if err := run.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "bb: peer: %v\n", err)
		return exitErr
	}

	ls := summarize(eng)
	if err := a.record(&ls); err != nil {
		fmt.Fprintf(os.Stderr, "bb: peer: record result: %v\n", err)
		return exitErr
	}
	sent, delivered, dropped := net.Stats()
	queued, lost := net.Outbox()
	if *jsonOut {
		printJSON(struct {
			levelSummary
			Sent      int64 `json:"sent"`
			Delivered int64 `json:"delivered"`
			Dropped   int64 `json:"dropped"`
			Queued    int   `json:"queued"`
			Lost      int64 `json:"lost"`
		}{ls, sent, delivered, dropped, queued, lost})
	} else {
		printSummary(ls)
		fmt.Printf("  network sent=%d delivered=%d dropped=%d queued=%d lost=%d\n",
			sent, delivered, dropped, queued, lost)
	}
	if eng.Outcome() != game.Won {
		return exitNotWon
	}
	return exitOK
}

// awaitPeer serves a websocket endpoint on addr until one peer connects.
// Later connections are refused.
func (a *app) awaitPeer(ctx context.Context, addr string) (transport.Channel, error) {
	accepted := make(chan *transport.WS, 1)
	handler := transport.Handler(func(c *transport.WS) {
		select {
		case accepted <- c:
		default:
			c.Close()
		}
	}, a.log)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	failed := make(chan error, 1)
	go func() {
		defer sentry.Recover()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case c := <-accepted:
		return c, nil
	case err := <-failed:
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
