package series

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/archetype"
	"github.com/duelforge/duelforge/internal/card"
	"github.com/duelforge/duelforge/internal/decision"
	"github.com/duelforge/duelforge/internal/game"
	"github.com/duelforge/duelforge/internal/stats"
)

func testDeck() []*card.Card {
	deck := make([]*card.Card, 0, 60)
	for i := 0; i < 30; i++ {
		deck = append(deck, &card.Card{
			Name:  fmt.Sprintf("Plains %d", i),
			Faces: []card.Face{{TypeLine: "Basic Land — Plains"}},
		})
		deck = append(deck, &card.Card{
			Name:  fmt.Sprintf("Knight %d", i),
			Faces: []card.Face{{TypeLine: "Creature — Knight", Power: "2", Toughness: "2"}},
		})
	}
	return deck
}

type stubDecks struct{}

func (stubDecks) LoadDeck(name, format string) ([]*card.Card, error) {
	return testDeck(), nil
}

type stubCatalogs struct{}

func (stubCatalogs) Load(format string) (*archetype.Catalog, error) {
	return &archetype.Catalog{
		Format: format,
		Entries: []archetype.Entry{
			{Deck: "white-weenie", Archetype: "White Weenie", MetaPercentage: 10},
			{Deck: "mono-black", Archetype: "Mono Black", MetaPercentage: 8},
		},
	}, nil
}

type nopStore struct{}

func (nopStore) GetWinRates(ctx context.Context, archetype, opponentArchetype, format string) (*stats.WinRates, error) {
	return nil, nil
}

func (nopStore) UpdateWinRates(ctx context.Context, archetype string, playedFirst, won bool, opponentArchetype, format string) error {
	return nil
}

// scriptedDriver concedes on behalf of a scripted loser per game.
type scriptedDriver struct {
	losers []string
	calls  int
}

func (d *scriptedDriver) PlayGame(ctx context.Context, m *game.Match) error {
	loser := d.losers[d.calls%len(d.losers)]
	d.calls++
	for _, p := range m.Players() {
		if p.Name == loser {
			return m.Concede(ctx, p)
		}
	}
	return fmt.Errorf("no player named %q", loser)
}

func testPlayers(t *testing.T) [2]game.PlayerSetup {
	t.Helper()
	cfg := decision.AutomatedConfig{}
	mk := func(name, deck string, seed int64) game.PlayerSetup {
		return game.PlayerSetup{
			Name:     name,
			Kind:     game.PlayerAutomated,
			DeckName: deck,
			PlayDraw: decision.NewAutomatedPlayDraw(cfg, rand.New(rand.NewSource(seed)), zap.NewNop()),
			Mulligan: decision.NewAutomatedMulligan(cfg, zap.NewNop()),
		}
	}
	return [2]game.PlayerSetup{
		mk("alice", "white-weenie", 1),
		mk("bob", "mono-black", 2),
	}
}

func TestSeriesSweep(t *testing.T) {
	driver := &scriptedDriver{losers: []string{"bob"}}
	runner := NewRunner(Config{
		Format:  "standard",
		BestOf:  3,
		Seed:    7,
		Players: testPlayers(t),
	}, stubDecks{}, stubCatalogs{}, nopStore{}, driver, zap.NewNop())

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "alice", result.Winner)
	assert.Equal(t, 2, result.Wins["alice"])
	assert.Len(t, result.Games, 2) // series stops at the majority
	assert.Equal(t, 1, result.Games[0].Number)
	assert.Equal(t, 2, result.Games[1].Number)
}

func TestSeriesGoesTheDistance(t *testing.T) {
	driver := &scriptedDriver{losers: []string{"bob", "alice", "bob"}}
	runner := NewRunner(Config{
		Format:  "standard",
		BestOf:  3,
		Seed:    7,
		Players: testPlayers(t),
	}, stubDecks{}, stubCatalogs{}, nopStore{}, driver, zap.NewNop())

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "alice", result.Winner)
	assert.Equal(t, 2, result.Wins["alice"])
	assert.Equal(t, 1, result.Wins["bob"])
	assert.Len(t, result.Games, 3)
}

func TestSeriesRoundsUpEvenBestOf(t *testing.T) {
	driver := &scriptedDriver{losers: []string{"alice"}}
	runner := NewRunner(Config{
		Format:  "standard",
		BestOf:  4, // becomes best-of-5
		Seed:    7,
		Players: testPlayers(t),
	}, stubDecks{}, stubCatalogs{}, nopStore{}, driver, zap.NewNop())

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "bob", result.Winner)
	assert.Len(t, result.Games, 3) // 3 wins needed out of 5
}
