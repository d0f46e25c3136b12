// Package modeling infers an opponent's deck archetype from revealed
// cards and blends it with historical win rates to build decision
// context for automated players.
package modeling

import (
	"context"

	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/archetype"
	"github.com/duelforge/duelforge/internal/decision"
	"github.com/duelforge/duelforge/internal/stats"
)

const (
	keyCardWeight       = 0.6
	secondaryCardWeight = 0.4
	guessThreshold      = 0.5
)

// UnknownArchetype is returned when no inference is possible.
const UnknownArchetype = "unknown"

// Guess is a suspected archetype with the confidence that produced it.
type Guess struct {
	Archetype  string
	Confidence float64
}

// Engine tracks per-observer seen-card sets and suspected archetypes
// for one match. Seen sets only grow; a stored guess is only replaced
// by a strictly higher-confidence one.
type Engine struct {
	catalog *archetype.Catalog
	store   stats.Store
	format  string
	logger  *zap.Logger

	seen      map[string]map[string]struct{} // observer -> card names
	suspected map[string]Guess               // observer -> guess about their opponent
}

// NewEngine creates a modeling engine for one match. catalog may be nil
// when no archetype data is available; inference then always falls back
// to UnknownArchetype.
func NewEngine(catalog *archetype.Catalog, store stats.Store, format string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:   catalog,
		store:     store,
		format:    format,
		logger:    logger,
		seen:      make(map[string]map[string]struct{}),
		suspected: make(map[string]Guess),
	}
}

// RevealCard records that observer saw the named card from the
// revealing player and re-evaluates the observer's archetype guess.
func (e *Engine) RevealCard(cardName, revealerID, observerID string) {
	if e.seen[observerID] == nil {
		e.seen[observerID] = make(map[string]struct{})
	}
	e.seen[observerID][cardName] = struct{}{}
	e.reevaluate(observerID)
}

// SeenCards returns a copy of the observer's seen-card set.
func (e *Engine) SeenCards(observerID string) map[string]struct{} {
	out := make(map[string]struct{}, len(e.seen[observerID]))
	for name := range e.seen[observerID] {
		out[name] = struct{}{}
	}
	return out
}

// SuspectedArchetype returns the observer's current guess, if any.
func (e *Engine) SuspectedArchetype(observerID string) (Guess, bool) {
	guess, ok := e.suspected[observerID]
	return guess, ok
}

// InferOpponentArchetype returns the requesting player's best guess at
// the opponent's archetype: the stored guess if one was made, otherwise
// the most-played archetype in the format's metagame, otherwise
// UnknownArchetype.
func (e *Engine) InferOpponentArchetype(requesterID string) string {
	if guess, ok := e.suspected[requesterID]; ok {
		return guess.Archetype
	}
	return e.MetaFrequencyGuess()
}

// MetaFrequencyGuess returns the archetype with the highest meta share,
// with catalog declaration order breaking ties, or UnknownArchetype for
// an empty or missing catalog.
func (e *Engine) MetaFrequencyGuess() string {
	if e.catalog == nil {
		return UnknownArchetype
	}
	entry, ok := e.catalog.TopMetaEntry()
	if !ok {
		return UnknownArchetype
	}
	return entry.Archetype
}

// PlayDrawState composes the decision context for the play/draw choice.
// The opponent archetype is omitted on the match's first game. A stats
// store failure is recovered locally: the context simply carries no
// historical data.
func (e *Engine) PlayDrawState(ctx context.Context, requesterID, myArchetype string, gameNumber int) decision.PlayDrawContext {
	decisionCtx := decision.PlayDrawContext{MyArchetype: myArchetype}
	if gameNumber > 1 {
		decisionCtx.OpponentArchetype = e.InferOpponentArchetype(requesterID)
	}

	if e.store == nil {
		return decisionCtx
	}
	rates, err := e.store.GetWinRates(ctx, myArchetype, decisionCtx.OpponentArchetype, e.format)
	if err != nil {
		e.logger.Warn("historical stats unavailable, deciding without them",
			zap.String("archetype", myArchetype),
			zap.Error(err),
		)
		return decisionCtx
	}
	decisionCtx.WinRates = rates
	return decisionCtx
}

// reevaluate recomputes the best archetype guess for an observer from
// their seen set, overwriting the stored guess only on a strictly
// higher confidence above the threshold.
func (e *Engine) reevaluate(observerID string) {
	if e.catalog == nil {
		return
	}
	seen := e.seen[observerID]

	var best Guess
	for _, entry := range e.catalog.Entries {
		conf := keyCardWeight*float64(intersect(seen, entry.KeyCards)) +
			secondaryCardWeight*float64(intersect(seen, entry.SecondaryCards))
		if conf > best.Confidence {
			best = Guess{Archetype: entry.Archetype, Confidence: conf}
		}
	}

	current := e.suspected[observerID]
	if best.Confidence > guessThreshold && best.Confidence > current.Confidence {
		e.suspected[observerID] = best
		e.logger.Info("updated suspected archetype",
			zap.String("observer", observerID),
			zap.String("archetype", best.Archetype),
			zap.Float64("confidence", best.Confidence),
		)
	}
}

func intersect(seen map[string]struct{}, names []string) int {
	count := 0
	for _, name := range names {
		if _, ok := seen[name]; ok {
			count++
		}
	}
	return count
}
