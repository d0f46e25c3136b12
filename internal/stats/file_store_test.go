package stats

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMatchupKey(t *testing.T) {
	assert.Equal(t, "vs_general", MatchupKey(""))
	assert.Equal(t, "vs_goblins", MatchupKey("Goblins"))
	assert.Equal(t, "vs_mono_red_aggro", MatchupKey("Mono Red Aggro"))
}

func TestUpdateWinRatesIncrementalMean(t *testing.T) {
	store := NewFileStore(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	// First recorded game on the play, won: 0.5*0+1 / 1 = 1.0.
	require.NoError(t, store.UpdateWinRates(ctx, "goblins", true, true, "", "sparky"))
	entry, err := store.GetWinRates(ctx, "goblins", "", "sparky")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1.0, entry.PlayWinRate)
	assert.Equal(t, 1, entry.Samples)

	// Second game on the play, lost: (1.0*1+0)/2 = 0.5.
	require.NoError(t, store.UpdateWinRates(ctx, "goblins", true, false, "", "sparky"))
	entry, err = store.GetWinRates(ctx, "goblins", "", "sparky")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 0.5, entry.PlayWinRate)
	assert.Equal(t, 2, entry.Samples)

	// Draw win rate untouched by play-side updates.
	assert.Equal(t, 0.5, entry.DrawWinRate)
}

func TestGetWinRatesMatchupFallback(t *testing.T) {
	store := NewFileStore(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, store.UpdateWinRates(ctx, "goblins", true, true, "", "sparky"))
	require.NoError(t, store.UpdateWinRates(ctx, "goblins", false, true, "Azorius Control", "sparky"))

	// Specific matchup wins over the general entry.
	entry, err := store.GetWinRates(ctx, "goblins", "Azorius Control", "sparky")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1.0, entry.DrawWinRate)

	// Unknown matchup falls back to vs_general.
	entry, err = store.GetWinRates(ctx, "goblins", "Dimir Mill", "sparky")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1.0, entry.PlayWinRate)

	// Unknown archetype yields no data, not an error.
	entry, err = store.GetWinRates(ctx, "elves", "", "sparky")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestConfidenceFromSamples(t *testing.T) {
	store := NewFileStore(t.TempDir(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, store.UpdateWinRates(ctx, "goblins", true, i%2 == 0, "", "sparky"))
	}
	entry, err := store.GetWinRates(ctx, "goblins", "", "sparky")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.InDelta(t, 0.01, entry.Confidence, 1e-9)
}

func TestMalformedBucketSurfaced(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sparky.json"), []byte("{not json"), 0o644))

	store := NewFileStore(dir, zap.NewNop())
	_, err := store.GetWinRates(context.Background(), "goblins", "", "sparky")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestUpdatePersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store := NewFileStore(dir, zap.NewNop())
	require.NoError(t, store.UpdateWinRates(ctx, "goblins", false, true, "", "sparky"))

	store.Reload("sparky")
	entry, err := store.GetWinRates(ctx, "goblins", "", "sparky")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 1.0, entry.DrawWinRate)
	assert.Equal(t, 1, entry.Samples)
}
