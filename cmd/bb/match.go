package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/actor"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/engine"
	"github.com/Coding-Sunday-Sofia/AdsBobBall/pkg/transport"
)

// match is a headless game on one engine, optionally mirrored by a second
// engine behind a delayed in-memory link. Both sides are stepped in turn, so
// a run is reproducible for a given seed and delay.
type match struct {
	host    *engine.Engine
	hostRun *actor.Runner
	hostNet *actor.Network
	peer    *engine.Engine
	peerRun *actor.Runner
	peerNet *actor.Network
	delay   int
	log     *zap.Logger
}

// newSoloMatch drives eng with a scripted player for every id in players.
func newSoloMatch(eng *engine.Engine, players []int, log *zap.Logger) *match {
	m := &match{host: eng, log: log}
	m.hostRun = actor.NewRunner(eng, actor.RunnerOptions{}, log)
	for _, id := range players {
		m.hostRun.Add(fmt.Sprintf("ai-%d", id), actor.NewAI(eng, id, 0, 0, log))
	}
	return m
}

// newLoopbackMatch connects host and peer through a pipe that delays every
// message by delay frames. The host plays player 1; the peer plays the rest.
func newLoopbackMatch(host, peer *engine.Engine, players []int, delay int, log *zap.Logger) (*match, error) {
	m := &match{host: host, peer: peer, delay: delay, log: log}
	hc, pc := transport.Pipe()

	var err error
	if m.hostNet, err = actor.NewNetwork(host, transport.NewDelayed(hc, delay), log.Named("host")); err != nil {
		return nil, err
	}
	if m.peerNet, err = actor.NewNetwork(peer, transport.NewDelayed(pc, delay), log.Named("peer")); err != nil {
		m.hostNet.Close()
		return nil, err
	}

	m.hostRun = actor.NewRunner(host, actor.RunnerOptions{}, log)
	m.peerRun = actor.NewRunner(peer, actor.RunnerOptions{}, log)
	for _, id := range players {
		if id == 1 {
			m.hostRun.Add("ai-1", actor.NewAI(host, id, 0, 0, log))
		} else {
			m.peerRun.Add(fmt.Sprintf("ai-%d", id), actor.NewAI(peer, id, 0, 0, log))
		}
	}
	m.hostRun.Add("net", m.hostNet)
	m.peerRun.Add("net", m.peerNet)
	return m, nil
}

// play steps the match until every engine has decided the level or maxTicks
// ticks have run (0 means no limit). It returns the ticks run.
func (m *match) play(maxTicks int) int {
	n := 0
	for maxTicks == 0 || n < maxTicks {
		hostDone := m.hostRun.Step()
		peerDone := true
		if m.peer != nil {
			peerDone = m.peerRun.Step()
		}
		n++
		if hostDone && peerDone {
			break
		}
	}
	m.flush()
	return n
}

// flush delivers every message still in flight without running the
// scripted players, so nothing new is submitted.
func (m *match) flush() {
	if m.peer == nil {
		return
	}
	for i := 0; i < m.delay+2; i++ {
		m.hostNet.OnTick(m.host.GameTime())
		m.peerNet.OnTick(m.peer.GameTime())
		m.host.AdvanceOneTick()
		m.peer.AdvanceOneTick()
	}
}

// summary describes the host's level; with a peer it also reports whether
// both engines hold the same state.
func (m *match) summary() levelSummary {
	ls := summarize(m.host)
	if m.peer != nil {
		hostTick, hostSum := m.host.Frame()
		peerTick, peerSum := m.peer.Frame()
		converged := hostTick == peerTick && hostSum == peerSum
		if !converged {
			m.log.Warn("peers diverged",
				zap.Int("host_tick", hostTick), zap.Int("peer_tick", peerTick),
				zap.Uint64("host_checksum", hostSum), zap.Uint64("peer_checksum", peerSum))
		}
		ls.Converged = &converged
	}
	return ls
}

// nextLevel advances every engine to the next level.
func (m *match) nextLevel() error {
	if err := m.host.ResetForNextLevel(); err != nil {
		return err
	}
	m.hostRun.Reset()
	if m.peer != nil {
		if err := m.peer.ResetForNextLevel(); err != nil {
			return err
		}
		m.peerRun.Reset()
	}
	return nil
}

// Close tears down the loopback link.
func (m *match) Close() {
	if m.hostNet != nil {
		m.hostNet.Close()
	}
	if m.peerNet != nil {
		m.peerNet.Close()
	}
}
