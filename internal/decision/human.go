package decision

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// HumanPlayDraw asks a human for the play/draw choice through a
// Prompter. Invalid answers reprompt; the call blocks the match until a
// valid token arrives or the context is cancelled.
type HumanPlayDraw struct {
	prompter Prompter
	logger   *zap.Logger
}

// NewHumanPlayDraw creates the human play/draw policy.
func NewHumanPlayDraw(prompter Prompter, logger *zap.Logger) *HumanPlayDraw {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HumanPlayDraw{prompter: prompter, logger: logger}
}

// Decide implements PlayDrawPolicy.
func (p *HumanPlayDraw) Decide(ctx context.Context, playerName string, decisionCtx PlayDrawContext) (Choice, error) {
	question := fmt.Sprintf("%s, choose to (p)lay or (d)raw: ", playerName)
	for {
		answer, err := p.prompter.Prompt(ctx, question)
		if err != nil {
			return ChoiceDraw, fmt.Errorf("decision: prompting %s: %w", playerName, err)
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "p", "play":
			return ChoicePlay, nil
		case "d", "draw":
			return ChoiceDraw, nil
		}
		p.logger.Debug("invalid play/draw answer, reprompting",
			zap.String("player", playerName),
			zap.String("answer", answer),
		)
	}
}

// HumanMulligan asks a human whether to keep or mulligan, listing the
// hand in the prompt.
type HumanMulligan struct {
	prompter Prompter
	logger   *zap.Logger
}

// NewHumanMulligan creates the human mulligan policy.
func NewHumanMulligan(prompter Prompter, logger *zap.Logger) *HumanMulligan {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HumanMulligan{prompter: prompter, logger: logger}
}

// Decide implements MulliganPolicy.
func (p *HumanMulligan) Decide(ctx context.Context, playerName string, hand HandState) (MullChoice, error) {
	names := make([]string, 0, len(hand.Hand))
	for _, inst := range hand.Hand {
		names = append(names, inst.Name())
	}
	question := fmt.Sprintf("%s, choose to (k)eep or (m)ulligan this hand:\n%s\n", playerName, strings.Join(names, ", "))

	for {
		answer, err := p.prompter.Prompt(ctx, question)
		if err != nil {
			return Keep, fmt.Errorf("decision: prompting %s: %w", playerName, err)
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "k", "keep":
			return Keep, nil
		case "m", "mulligan", "mull":
			return Mulligan, nil
		}
		p.logger.Debug("invalid mulligan answer, reprompting",
			zap.String("player", playerName),
			zap.String("answer", answer),
		)
	}
}

// StdinPrompter reads answers line by line from a reader, writing
// questions to a writer. The stdin/stdout pair is the default human
// transport for the CLI.
type StdinPrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewStdinPrompter creates a prompter over the given streams.
func NewStdinPrompter(in io.Reader, out io.Writer) *StdinPrompter {
	return &StdinPrompter{in: bufio.NewScanner(in), out: out}
}

// Prompt implements Prompter. Blocks until a line is read.
func (p *StdinPrompter) Prompt(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.in.Text(), nil
}
