package decision

import (
	"context"
	"math/rand"

	"go.uber.org/zap"
)

// AutomatedConfig tunes the automated policies. Zero values fall back
// to the defaults below.
type AutomatedConfig struct {
	// PlayProbability is the chance of choosing PLAY when no historical
	// data exists.
	PlayProbability float64
	// MinLands/MaxLands is the inclusive land-count range in which an
	// opening hand is kept.
	MinLands int
	MaxLands int
	// MaxMulligans is the mulligan count past which any hand is kept.
	MaxMulligans int
}

const (
	defaultPlayProbability = 0.6
	defaultMinLands        = 3
	defaultMaxLands        = 5
	defaultMaxMulligans    = 2
)

func (c AutomatedConfig) withDefaults() AutomatedConfig {
	if c.PlayProbability <= 0 {
		c.PlayProbability = defaultPlayProbability
	}
	if c.MinLands <= 0 {
		c.MinLands = defaultMinLands
	}
	if c.MaxLands <= 0 {
		c.MaxLands = defaultMaxLands
	}
	if c.MaxMulligans <= 0 {
		c.MaxMulligans = defaultMaxMulligans
	}
	return c
}

// AutomatedPlayDraw chooses PLAY when historical win rates favor it,
// falling back to a weighted coin flip from a seeded RNG so runs are
// reproducible.
type AutomatedPlayDraw struct {
	cfg    AutomatedConfig
	rng    *rand.Rand
	logger *zap.Logger
}

// NewAutomatedPlayDraw creates the automated play/draw policy.
func NewAutomatedPlayDraw(cfg AutomatedConfig, rng *rand.Rand, logger *zap.Logger) *AutomatedPlayDraw {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutomatedPlayDraw{cfg: cfg.withDefaults(), rng: rng, logger: logger}
}

// Decide implements PlayDrawPolicy. Never suspends.
func (p *AutomatedPlayDraw) Decide(ctx context.Context, playerName string, decisionCtx PlayDrawContext) (Choice, error) {
	if decisionCtx.WinRates != nil {
		choice := ChoiceDraw
		if decisionCtx.WinRates.PlayWinRate > decisionCtx.WinRates.DrawWinRate {
			choice = ChoicePlay
		}
		p.logger.Debug("play/draw from historical rates",
			zap.String("player", playerName),
			zap.Float64("play_win_rate", decisionCtx.WinRates.PlayWinRate),
			zap.Float64("draw_win_rate", decisionCtx.WinRates.DrawWinRate),
			zap.Stringer("choice", choice),
		)
		return choice, nil
	}

	choice := ChoiceDraw
	if p.rng.Float64() < p.cfg.PlayProbability {
		choice = ChoicePlay
	}
	p.logger.Debug("play/draw from weighted fallback",
		zap.String("player", playerName),
		zap.Float64("play_probability", p.cfg.PlayProbability),
		zap.Stringer("choice", choice),
	)
	return choice, nil
}

// AutomatedMulligan keeps any hand once the loss-avoidance floor is
// reached, otherwise keeps iff the land count sits in the configured
// inclusive range.
type AutomatedMulligan struct {
	cfg    AutomatedConfig
	logger *zap.Logger
}

// NewAutomatedMulligan creates the automated mulligan policy.
func NewAutomatedMulligan(cfg AutomatedConfig, logger *zap.Logger) *AutomatedMulligan {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutomatedMulligan{cfg: cfg.withDefaults(), logger: logger}
}

// Decide implements MulliganPolicy. Never suspends.
func (p *AutomatedMulligan) Decide(ctx context.Context, playerName string, hand HandState) (MullChoice, error) {
	choice := Mulligan
	switch {
	case hand.MulliganCount > p.cfg.MaxMulligans:
		choice = Keep
	case hand.Lands >= p.cfg.MinLands && hand.Lands <= p.cfg.MaxLands:
		choice = Keep
	}

	p.logger.Debug("mulligan decision",
		zap.String("player", playerName),
		zap.Int("lands", hand.Lands),
		zap.Int("mulligan_count", hand.MulliganCount),
		zap.Stringer("choice", choice),
	)
	return choice, nil
}
