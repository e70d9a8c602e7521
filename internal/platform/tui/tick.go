// Package tui provides the Bubble Tea front-end for Buzzword Dodge.
// It handles the terminal UI loop, input mapping, asynchronous scoring and
// the SSH server.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/buzzword-dodge/internal/catalog"
	"github.com/vovakirdan/buzzword-dodge/internal/game"
	"github.com/vovakirdan/buzzword-dodge/internal/oracle"
)

// TickMsg is sent to trigger a game simulation tick.
type TickMsg time.Time

// CountdownMsg advances the writing timer by one countdown step.
type CountdownMsg time.Time

// EvaluationMsg carries the oracle outcome of a submission back into the
// update loop, where it is handed to Game.Resolve.
type EvaluationMsg struct {
	ID   uint64
	Resp oracle.Response
	Err  error
}

// CatalogMsg is a hot-reloaded catalog, or the error that stopped one.
type CatalogMsg struct {
	Catalog *catalog.Catalog
	Err     error
}

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// countdownCmd schedules the next writing timer step.
func countdownCmd(step time.Duration) tea.Cmd {
	return tea.Tick(step, func(t time.Time) tea.Msg {
		return CountdownMsg(t)
	})
}

// evaluateCmd scores a submission off the update loop.
func evaluateCmd(scorer oracle.Scorer, sub game.Submission, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		resp, err := scorer.Score(ctx, sub.Request)
		return EvaluationMsg{ID: sub.ID, Resp: resp, Err: err}
	}
}

// watchCmd waits for the next catalog reload. It returns nil once the
// watcher is closed.
func watchCmd(w *catalog.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case c, ok := <-w.Updates:
			if !ok {
				return nil
			}
			return CatalogMsg{Catalog: c}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return CatalogMsg{Err: err}
		}
	}
}
