// Package stats persists per-archetype matchup win rates keyed by
// format. Rates are maintained as incremental means over recorded
// match results; a confidence score derived from sample size lets
// decision policies weigh how much to trust them.
package stats

import (
	"context"
	"errors"
	"strings"
)

// ErrMalformed indicates a persisted stats bucket could not be decoded.
// It is surfaced to the caller rather than coerced into an empty
// structure, so a corrupt file can never skew recorded outcomes.
var ErrMalformed = errors.New("stats: malformed persisted data")

// confidenceSamples is the sample count at which confidence saturates.
const confidenceSamples = 1000

// WinRates is one archetype-matchup entry.
type WinRates struct {
	PlayWinRate float64 `json:"play_win_rate"`
	DrawWinRate float64 `json:"draw_win_rate"`
	Samples     int     `json:"samples"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// Store reads and records historical win rates. Implementations follow
// a read-modify-write contract with a single writer per format bucket;
// concurrent writers to the same bucket may lose updates.
type Store interface {
	// GetWinRates returns the entry for (archetype, opponentArchetype,
	// format), falling back to the archetype's general entry. A nil
	// result with nil error means no data exists.
	GetWinRates(ctx context.Context, archetype, opponentArchetype, format string) (*WinRates, error)

	// UpdateWinRates folds one match result into the matchup entry
	// using an incremental mean and increments the sample count.
	UpdateWinRates(ctx context.Context, archetype string, playedFirst, won bool, opponentArchetype, format string) error
}

// MatchupKey derives the storage key for an opponent archetype.
// An empty opponent maps to the general bucket.
func MatchupKey(opponentArchetype string) string {
	if opponentArchetype == "" {
		return "vs_general"
	}
	return "vs_" + strings.ReplaceAll(strings.ToLower(opponentArchetype), " ", "_")
}

// withConfidence returns a copy with confidence derived from samples.
func withConfidence(entry WinRates) *WinRates {
	conf := float64(entry.Samples) / confidenceSamples
	if conf > 1 {
		conf = 1
	}
	entry.Confidence = conf
	return &entry
}

// fold applies one result to the entry, rounding rates to 4 decimals.
func fold(entry *WinRates, playedFirst, won bool) {
	wonVal := 0.0
	if won {
		wonVal = 1.0
	}
	samples := float64(entry.Samples)
	if playedFirst {
		entry.PlayWinRate = round4((entry.PlayWinRate*samples + wonVal) / (samples + 1))
	} else {
		entry.DrawWinRate = round4((entry.DrawWinRate*samples + wonVal) / (samples + 1))
	}
	entry.Samples++
}

func round4(v float64) float64 {
	const scale = 10000
	if v >= 0 {
		return float64(int64(v*scale+0.5)) / scale
	}
	return float64(int64(v*scale-0.5)) / scale
}
