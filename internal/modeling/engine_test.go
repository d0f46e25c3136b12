package modeling

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/archetype"
	"github.com/duelforge/duelforge/internal/stats"
)

func testCatalog() *archetype.Catalog {
	return &archetype.Catalog{
		Format: "sparky",
		Entries: []archetype.Entry{
			{
				Deck:           "sparky_red",
				Archetype:      "goblins",
				KeyCards:       []string{"Raging Goblin", "Goblin Gang Leader"},
				SecondaryCards: []string{"Shock", "Mountain"},
				MetaPercentage: 0.15,
			},
			{
				Deck:           "sparky_blue",
				Archetype:      "azorius control",
				KeyCards:       []string{"Teferi's Ageless Insight"},
				SecondaryCards: []string{"Island"},
				MetaPercentage: 0.15,
			},
		},
	}
}

type stubStore struct {
	rates *stats.WinRates
	err   error
}

func (s *stubStore) GetWinRates(ctx context.Context, archetype, opp, format string) (*stats.WinRates, error) {
	return s.rates, s.err
}

func (s *stubStore) UpdateWinRates(ctx context.Context, archetype string, playedFirst, won bool, opp, format string) error {
	return nil
}

func TestRevealKeyCardSetsGuess(t *testing.T) {
	engine := NewEngine(testCatalog(), &stubStore{}, "sparky", zap.NewNop())

	engine.RevealCard("Raging Goblin", "bob", "alice")

	guess, ok := engine.SuspectedArchetype("alice")
	require.True(t, ok)
	assert.Equal(t, "goblins", guess.Archetype)
	assert.InDelta(t, 0.6, guess.Confidence, 1e-9)
}

func TestSecondaryCardAloneBelowThreshold(t *testing.T) {
	engine := NewEngine(testCatalog(), &stubStore{}, "sparky", zap.NewNop())

	engine.RevealCard("Mountain", "bob", "alice")

	_, ok := engine.SuspectedArchetype("alice")
	assert.False(t, ok, "0.4 confidence must not clear the 0.5 threshold")
}

func TestGuessNeverRegresses(t *testing.T) {
	engine := NewEngine(testCatalog(), &stubStore{}, "sparky", zap.NewNop())

	engine.RevealCard("Raging Goblin", "bob", "alice")
	engine.RevealCard("Goblin Gang Leader", "bob", "alice")

	guess, ok := engine.SuspectedArchetype("alice")
	require.True(t, ok)
	assert.InDelta(t, 1.2, guess.Confidence, 1e-9)

	// A lower-confidence competing signal never overwrites.
	engine.RevealCard("Teferi's Ageless Insight", "bob", "alice")
	after, ok := engine.SuspectedArchetype("alice")
	require.True(t, ok)
	assert.Equal(t, "goblins", after.Archetype)
	assert.GreaterOrEqual(t, after.Confidence, guess.Confidence)
}

func TestSeenCardsMonotone(t *testing.T) {
	engine := NewEngine(testCatalog(), &stubStore{}, "sparky", zap.NewNop())

	engine.RevealCard("Shock", "bob", "alice")
	engine.RevealCard("Shock", "bob", "alice")
	engine.RevealCard("Mountain", "bob", "alice")

	seen := engine.SeenCards("alice")
	assert.Len(t, seen, 2)

	// Mutating the returned copy must not affect the engine.
	delete(seen, "Shock")
	assert.Len(t, engine.SeenCards("alice"), 2)
}

func TestInferOpponentArchetypeFallbacks(t *testing.T) {
	engine := NewEngine(testCatalog(), &stubStore{}, "sparky", zap.NewNop())

	// No guess yet: meta-frequency guess, declaration order breaks the tie.
	assert.Equal(t, "goblins", engine.InferOpponentArchetype("alice"))

	// Empty catalog: unknown.
	empty := NewEngine(&archetype.Catalog{}, &stubStore{}, "sparky", zap.NewNop())
	assert.Equal(t, UnknownArchetype, empty.InferOpponentArchetype("alice"))

	// Missing catalog: unknown.
	missing := NewEngine(nil, &stubStore{}, "sparky", zap.NewNop())
	assert.Equal(t, UnknownArchetype, missing.InferOpponentArchetype("alice"))

	// A stored guess wins over the meta fallback.
	engine.RevealCard("Teferi's Ageless Insight", "bob", "alice")
	assert.Equal(t, "azorius control", engine.InferOpponentArchetype("alice"))
}

func TestPlayDrawState(t *testing.T) {
	store := &stubStore{rates: &stats.WinRates{PlayWinRate: 0.7, DrawWinRate: 0.4, Samples: 10}}
	engine := NewEngine(testCatalog(), store, "sparky", zap.NewNop())

	// Game 1: opponent archetype omitted.
	decisionCtx := engine.PlayDrawState(context.Background(), "alice", "goblins", 1)
	assert.Equal(t, "goblins", decisionCtx.MyArchetype)
	assert.Empty(t, decisionCtx.OpponentArchetype)
	require.NotNil(t, decisionCtx.WinRates)
	assert.Equal(t, 0.7, decisionCtx.WinRates.PlayWinRate)

	// Game 2: opponent archetype inferred.
	decisionCtx = engine.PlayDrawState(context.Background(), "alice", "goblins", 2)
	assert.Equal(t, "goblins", decisionCtx.OpponentArchetype)
}

func TestPlayDrawStateRecoversFromStatsFailure(t *testing.T) {
	store := &stubStore{err: errors.New("stats backend down")}
	engine := NewEngine(testCatalog(), store, "sparky", zap.NewNop())

	decisionCtx := engine.PlayDrawState(context.Background(), "alice", "goblins", 1)
	assert.Nil(t, decisionCtx.WinRates, "stats failure degrades to no data")
}
