package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/config"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/engine"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/game"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/model"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/store"
)

// Exit codes.
const (
	exitOK     = 0
	exitErr    = 1
	exitNotWon = 2
)

// app holds shared state for all CLI subcommands.
type app struct {
	cfg     config.Config
	params  engine.Params
	store   store.StoreInterface
	log     *zap.Logger
	metrics *http.Server
	sentry  bool
}

// newApp loads the environment, opens the database and starts the optional
// metrics endpoint and Sentry client.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	params, err := cfg.EngineParams()
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(cfg.DB); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	s, err := store.New(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("cannot open database %q: %w", cfg.DB, err)
	}
	a := &app{cfg: cfg, params: params, store: s, log: log}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN, Release: "bb@" + version}); err != nil {
			log.Warn("sentry disabled", zap.Error(err))
		} else {
			a.sentry = true
		}
	}
	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}
	return a, nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	a.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		defer sentry.Recover()
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.log.Info("serving metrics", zap.String("addr", addr))
}

// Close releases the database and flushes telemetry.
func (a *app) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metrics.Shutdown(ctx)
		cancel()
	}
	if a.sentry {
		sentry.Flush(2 * time.Second)
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// resolveSeed returns the flag value, then BOBBALL_SEED, then a random seed.
// Peers must share the seed, so it is always chosen before an engine exists.
func (a *app) resolveSeed(flagVal int64) int64 {
	if flagVal != 0 {
		return flagVal
	}
	if a.cfg.Seed != 0 {
		return a.cfg.Seed
	}
	for {
		if s := rand.Int64(); s != 0 {
			return s
		}
	}
}

// newEngine builds an engine with the configured params.
func (a *app) newEngine(origin string, seed int64) (*engine.Engine, error) {
	if origin == "" {
		origin = a.cfg.Origin
	}
	return engine.New(engine.Options{
		Params: a.params,
		Origin: origin,
		Seed:   seed,
		Logger: a.log,
	})
}

// saveEngine snapshots eng and stores it under name.
func (a *app) saveEngine(name string, eng *engine.Engine) (*model.Save, error) {
	snap, err := eng.Snapshot()
	if err != nil {
		return nil, err
	}
	data, err := engine.EncodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	head := snap.Head()
	sv := &model.Save{
		Name:     name,
		Origin:   snap.Origin,
		GameTime: int(snap.GameTime),
		Tick:     head.Tick,
		Level:    head.Level,
		Checksum: head.Checksum(),
		Data:     data,
	}
	if err := a.store.SaveSnapshot(sv); err != nil {
		return nil, fmt.Errorf("save %q: %w", name, err)
	}
	return sv, nil
}

// loadEngine restores the save named name.
func (a *app) loadEngine(name string) (*engine.Engine, error) {
	sv, err := a.store.LoadSnapshot(name)
	if err != nil {
		return nil, err
	}
	snap, err := engine.DecodeSnapshot(sv.Data)
	if err != nil {
		return nil, fmt.Errorf("save %q: %w", name, err)
	}
	return engine.Resume(snap, engine.Options{Logger: a.log})
}

// levelSummary is what match commands print for each finished level.
type levelSummary struct {
	Origin    string       `json:"origin"`
	Seed      int64        `json:"seed"`
	Level     int          `json:"level"`
	Tick      int          `json:"tick"`
	Outcome   string       `json:"outcome"`
	Percent   int          `json:"percent"`
	TimeLeft  int          `json:"time_left"`
	Scores    []int        `json:"scores"`
	Lives     []int        `json:"lives"`
	Checksum  string       `json:"checksum"`
	Stats     engine.Stats `json:"stats"`
	Converged *bool        `json:"converged,omitempty"`
	ResultID  int64        `json:"result_id,omitempty"`

	sum uint64
}

func summarize(eng *engine.Engine) levelSummary {
	s := eng.CurrentState()
	tick, sum := eng.Frame()
	ls := levelSummary{
		Origin:   eng.Origin(),
		Seed:     eng.Seed(),
		Tick:     tick,
		Outcome:  string(outcomeOf(eng.Outcome())),
		TimeLeft: eng.TimeRemaining(),
		Checksum: fmt.Sprintf("%016x", sum),
		Stats:    eng.Stats(),
		sum:      sum,
	}
	if s != nil {
		ls.Level = s.Level
		ls.Percent = s.Grid.PercentComplete()
		for _, p := range s.Players {
			ls.Scores = append(ls.Scores, p.Score)
			ls.Lives = append(ls.Lives, p.Lives)
		}
	}
	return ls
}

func outcomeOf(o game.Outcome) model.Outcome {
	switch o {
	case game.Won:
		return model.OutcomeWon
	case game.Lost:
		return model.OutcomeLost
	default:
		return model.OutcomeStopped
	}
}

// record stores ls as a result and fills in its ID.
func (a *app) record(ls *levelSummary) error {
	r := &model.Result{
		Origin:   ls.Origin,
		Seed:     ls.Seed,
		Level:    ls.Level,
		Tick:     ls.Tick,
		Outcome:  model.Outcome(ls.Outcome),
		Percent:  ls.Percent,
		Scores:   ls.Scores,
		Checksum: ls.sum,
	}
	id, err := a.store.RecordResult(r)
	if err != nil {
		return err
	}
	ls.ResultID = id
	return nil
}

func printSummary(ls levelSummary) {
	fmt.Printf("level %d %-7s tick=%-6d complete=%d%% time_left=%dms checksum=%s\n",
		ls.Level, ls.Outcome, ls.Tick, ls.Percent, ls.TimeLeft, ls.Checksum)
	fmt.Printf("  scores=%v lives=%v\n", ls.Scores, ls.Lives)
	st := ls.Stats
	fmt.Printf("  ticks=%d rollbacks=%d deepest=%d desyncs=%d events=%d/%d purged=%d\n",
		st.Ticks, st.Rollbacks, st.DeepestRollback, st.Desyncs,
		st.EventsApplied, st.Submitted+st.Received, st.EventsPurged)
	if ls.Converged != nil {
		if *ls.Converged {
			fmt.Println("  peers converged")
		} else {
			fmt.Println("  peers DIVERGED")
		}
	}
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// playerIDs returns 1..n.
func playerIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i + 1
	}
	return ids
}

// parseArgs parses fs from args, allowing flags after positional arguments,
// and returns the positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return pos, nil
		}
		pos = append(pos, fs.Arg(0))
		args = fs.Args()[1:]
	}
}
