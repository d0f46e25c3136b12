// Package series runs best-of-N match series. Each game is a full
// match state machine; the series tallies wins and stops as soon as a
// player reaches the majority.
package series

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/game"
	"github.com/duelforge/duelforge/internal/stats"
)

// Driver takes a match from the end of setup to its conclusion. The
// match is in StatePlaying when PlayGame is called and must be in
// StateMatchEnded when it returns.
type Driver interface {
	PlayGame(ctx context.Context, m *game.Match) error
}

// Config configures a series.
type Config struct {
	Format string
	// BestOf is the maximum number of games; an even or non-positive
	// value is rounded up to the next valid best-of.
	BestOf int
	// Seed derives the per-game seeds.
	Seed    int64
	Players [2]game.PlayerSetup
}

// GameResult is the outcome of one game in the series.
type GameResult struct {
	Number int
	Winner string
	Loser  string
}

// Result is the outcome of the whole series.
type Result struct {
	ID     string
	Winner string
	Wins   map[string]int
	Games  []GameResult
}

// Runner plays a series of matches.
type Runner struct {
	cfg        Config
	decks      game.DeckLoader
	catalogs   game.CatalogLoader
	statsStore stats.Store
	driver     Driver
	logger     *zap.Logger
}

// NewRunner creates a series runner.
func NewRunner(cfg Config, decks game.DeckLoader, catalogs game.CatalogLoader, statsStore stats.Store, driver Driver, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BestOf <= 0 {
		cfg.BestOf = 3
	}
	if cfg.BestOf%2 == 0 {
		cfg.BestOf++
	}
	return &Runner{
		cfg:        cfg,
		decks:      decks,
		catalogs:   catalogs,
		statsStore: statsStore,
		driver:     driver,
		logger:     logger,
	}
}

// Run plays games until one player reaches the majority of BestOf.
// Game numbers are passed through to each match, so opponent archetype
// inference stays withheld on game 1 and active afterwards.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		ID:   uuid.NewString(),
		Wins: make(map[string]int),
	}
	needed := r.cfg.BestOf/2 + 1

	for gameNo := 1; gameNo <= r.cfg.BestOf; gameNo++ {
		m := game.NewMatch(game.MatchConfig{
			Format:     r.cfg.Format,
			GameNumber: gameNo,
			Seed:       r.cfg.Seed + int64(gameNo),
			Players:    r.cfg.Players,
		}, r.decks, r.catalogs, r.statsStore, r.logger)

		if err := m.Run(ctx); err != nil {
			return nil, fmt.Errorf("series: game %d: %w", gameNo, err)
		}
		if m.State() == game.StatePlaying {
			if err := r.driver.PlayGame(ctx, m); err != nil {
				return nil, fmt.Errorf("series: playing game %d: %w", gameNo, err)
			}
		}
		if m.State() != game.StateMatchEnded {
			return nil, fmt.Errorf("series: game %d ended in state %s", gameNo, m.State())
		}

		winner := m.Winner().Name
		result.Wins[winner]++
		result.Games = append(result.Games, GameResult{
			Number: gameNo,
			Winner: winner,
			Loser:  m.Loser().Name,
		})
		r.logger.Info("series game finished",
			zap.String("series_id", result.ID),
			zap.Int("game", gameNo),
			zap.String("winner", winner),
		)

		if result.Wins[winner] >= needed {
			result.Winner = winner
			break
		}
	}

	if result.Winner == "" {
		return nil, fmt.Errorf("series: no winner after %d games", len(result.Games))
	}
	r.logger.Info("series finished",
		zap.String("series_id", result.ID),
		zap.String("winner", result.Winner),
		zap.Int("games", len(result.Games)),
	)
	return result, nil
}
