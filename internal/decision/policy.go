// Package decision holds the pluggable strategies for match decisions:
// play/draw and mulligan choices, for human players (blocking prompt)
// and automated players (heuristic plus historical statistics).
package decision

import (
	"context"

	"github.com/duelforge/duelforge/internal/card"
	"github.com/duelforge/duelforge/internal/stats"
)

// Choice is a play/draw decision.
type Choice int

const (
	ChoicePlay Choice = iota
	ChoiceDraw
)

func (c Choice) String() string {
	if c == ChoicePlay {
		return "PLAY"
	}
	return "DRAW"
}

// MullChoice is a mulligan decision.
type MullChoice int

const (
	Keep MullChoice = iota
	Mulligan
)

func (m MullChoice) String() string {
	if m == Keep {
		return "KEEP"
	}
	return "MULLIGAN"
}

// PlayDrawContext is the decision context for the play/draw choice.
// WinRates is nil when no historical data exists; OpponentArchetype is
// empty on the match's first game.
type PlayDrawContext struct {
	MyArchetype       string
	OpponentArchetype string
	WinRates          *stats.WinRates
}

// HandState is the decision context for a mulligan choice.
type HandState struct {
	Hand          []*card.Instance
	MulliganCount int
	Lands         int
}

// PlayDrawPolicy decides whether a player plays first or draws first.
type PlayDrawPolicy interface {
	Decide(ctx context.Context, playerName string, decisionCtx PlayDrawContext) (Choice, error)
}

// MulliganPolicy decides whether a player keeps or mulligans a hand.
type MulliganPolicy interface {
	Decide(ctx context.Context, playerName string, hand HandState) (MullChoice, error)
}

// Prompter supplies blocking textual answers for human players. The
// match goroutine suspends until an answer arrives or ctx is cancelled.
type Prompter interface {
	Prompt(ctx context.Context, question string) (string, error)
}
