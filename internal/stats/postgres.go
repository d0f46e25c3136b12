package stats

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema embed.FS

// PostgresStore implements Store on top of a pgx connection pool.
// The read-modify-write sequence runs inside a transaction, but the
// single-writer-per-format contract from the Store interface stands:
// this store does not arbitrate concurrent writers.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// OpenPostgres connects to the database and ensures the schema exists.
func OpenPostgres(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("stats: connecting to postgres: %w", err)
	}
	store := &PostgresStore{pool: pool, logger: logger}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	ddl, err := schema.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("stats: reading schema: %w", err)
	}
	if _, err := s.pool.Exec(ctx, string(ddl)); err != nil {
		return fmt.Errorf("stats: applying schema: %w", err)
	}
	return nil
}

// GetWinRates implements Store.
func (s *PostgresStore) GetWinRates(ctx context.Context, archetype, opponentArchetype, format string) (*WinRates, error) {
	if opponentArchetype != "" {
		entry, err := s.getMatchup(ctx, format, archetype, MatchupKey(opponentArchetype))
		if err != nil {
			return nil, err
		}
		if entry != nil {
			return entry, nil
		}
	}
	return s.getMatchup(ctx, format, archetype, MatchupKey(""))
}

func (s *PostgresStore) getMatchup(ctx context.Context, format, archetype, matchup string) (*WinRates, error) {
	var entry WinRates
	err := s.pool.QueryRow(ctx, `
		SELECT play_win_rate, draw_win_rate, samples
		  FROM win_rates
		 WHERE format = $1 AND archetype = $2 AND matchup = $3
	`, format, archetype, matchup).Scan(&entry.PlayWinRate, &entry.DrawWinRate, &entry.Samples)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stats: querying win rates: %w", err)
	}
	return withConfidence(entry), nil
}

// UpdateWinRates implements Store.
func (s *PostgresStore) UpdateWinRates(ctx context.Context, archetype string, playedFirst, won bool, opponentArchetype, format string) error {
	matchup := MatchupKey(opponentArchetype)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("stats: beginning update: %w", err)
	}
	defer tx.Rollback(ctx)

	// Ensure the row exists, then read it back under the transaction.
	if _, err := tx.Exec(ctx, `
		INSERT INTO win_rates(format, archetype, matchup)
		VALUES ($1, $2, $3)
		ON CONFLICT (format, archetype, matchup) DO NOTHING
	`, format, archetype, matchup); err != nil {
		return fmt.Errorf("stats: initializing matchup row: %w", err)
	}

	var entry WinRates
	if err := tx.QueryRow(ctx, `
		SELECT play_win_rate, draw_win_rate, samples
		  FROM win_rates
		 WHERE format = $1 AND archetype = $2 AND matchup = $3
		 FOR UPDATE
	`, format, archetype, matchup).Scan(&entry.PlayWinRate, &entry.DrawWinRate, &entry.Samples); err != nil {
		return fmt.Errorf("stats: reading matchup row: %w", err)
	}

	fold(&entry, playedFirst, won)

	if _, err := tx.Exec(ctx, `
		UPDATE win_rates
		   SET play_win_rate = $4,
		       draw_win_rate = $5,
		       samples = $6,
		       updated_at = now()
		 WHERE format = $1 AND archetype = $2 AND matchup = $3
	`, format, archetype, matchup, entry.PlayWinRate, entry.DrawWinRate, entry.Samples); err != nil {
		return fmt.Errorf("stats: writing matchup row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("stats: committing update: %w", err)
	}

	s.logger.Debug("updated win rates",
		zap.String("format", format),
		zap.String("archetype", archetype),
		zap.String("matchup", matchup),
		zap.Int("samples", entry.Samples),
	)
	return nil
}
