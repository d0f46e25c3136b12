package decision

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duelforge/duelforge/internal/stats"
)

func TestAutomatedPlayDrawUsesHistoricalRates(t *testing.T) {
	policy := NewAutomatedPlayDraw(AutomatedConfig{}, rand.New(rand.NewSource(1)), zap.NewNop())

	choice, err := policy.Decide(context.Background(), "bot", PlayDrawContext{
		WinRates: &stats.WinRates{PlayWinRate: 0.7, DrawWinRate: 0.4},
	})
	require.NoError(t, err)
	assert.Equal(t, ChoicePlay, choice)

	choice, err = policy.Decide(context.Background(), "bot", PlayDrawContext{
		WinRates: &stats.WinRates{PlayWinRate: 0.3, DrawWinRate: 0.4},
	})
	require.NoError(t, err)
	assert.Equal(t, ChoiceDraw, choice)
}

func TestAutomatedPlayDrawFallbackIsReproducible(t *testing.T) {
	run := func() []Choice {
		policy := NewAutomatedPlayDraw(AutomatedConfig{}, rand.New(rand.NewSource(42)), zap.NewNop())
		var choices []Choice
		for i := 0; i < 20; i++ {
			choice, err := policy.Decide(context.Background(), "bot", PlayDrawContext{})
			require.NoError(t, err)
			choices = append(choices, choice)
		}
		return choices
	}

	assert.Equal(t, run(), run(), "same seed must yield the same choices")
}

func TestAutomatedPlayDrawFallbackProbabilityConfigurable(t *testing.T) {
	// Probability near 1 should essentially always choose PLAY.
	policy := NewAutomatedPlayDraw(AutomatedConfig{PlayProbability: 0.999999}, rand.New(rand.NewSource(7)), zap.NewNop())
	for i := 0; i < 50; i++ {
		choice, err := policy.Decide(context.Background(), "bot", PlayDrawContext{})
		require.NoError(t, err)
		assert.Equal(t, ChoicePlay, choice)
	}
}

func TestAutomatedMulligan(t *testing.T) {
	policy := NewAutomatedMulligan(AutomatedConfig{}, zap.NewNop())
	ctx := context.Background()

	cases := []struct {
		name     string
		lands    int
		mulls    int
		expected MullChoice
	}{
		{"lands in range", 4, 0, Keep},
		{"lower bound inclusive", 3, 0, Keep},
		{"upper bound inclusive", 5, 0, Keep},
		{"too few lands", 2, 0, Mulligan},
		{"too many lands", 6, 1, Mulligan},
		{"loss-avoidance floor", 0, 3, Keep},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			choice, err := policy.Decide(ctx, "bot", HandState{Lands: tc.lands, MulliganCount: tc.mulls})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, choice)
		})
	}
}

func TestAutomatedMulliganConfigurableBounds(t *testing.T) {
	policy := NewAutomatedMulligan(AutomatedConfig{MinLands: 2, MaxLands: 6}, zap.NewNop())

	choice, err := policy.Decide(context.Background(), "bot", HandState{Lands: 2})
	require.NoError(t, err)
	assert.Equal(t, Keep, choice)

	choice, err = policy.Decide(context.Background(), "bot", HandState{Lands: 6})
	require.NoError(t, err)
	assert.Equal(t, Keep, choice)
}

func TestHumanPlayDrawRepromptsOnInvalidInput(t *testing.T) {
	var out strings.Builder
	prompter := NewStdinPrompter(strings.NewReader("banana\nP\n"), &out)
	policy := NewHumanPlayDraw(prompter, zap.NewNop())

	choice, err := policy.Decide(context.Background(), "Player 1", PlayDrawContext{})
	require.NoError(t, err)
	assert.Equal(t, ChoicePlay, choice)
	assert.Equal(t, 2, strings.Count(out.String(), "(p)lay or (d)raw"))
}

func TestHumanMulligan(t *testing.T) {
	var out strings.Builder
	prompter := NewStdinPrompter(strings.NewReader("x\nmull\n"), &out)
	policy := NewHumanMulligan(prompter, zap.NewNop())

	choice, err := policy.Decide(context.Background(), "Player 1", HandState{})
	require.NoError(t, err)
	assert.Equal(t, Mulligan, choice)
}

func TestHumanPolicyEOF(t *testing.T) {
	prompter := NewStdinPrompter(strings.NewReader(""), &strings.Builder{})
	policy := NewHumanPlayDraw(prompter, zap.NewNop())

	_, err := policy.Decide(context.Background(), "Player 1", PlayDrawContext{})
	assert.Error(t, err)
}
