package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ytanalyzer/internal/analysis"
)

// prompter reads answers line by line from the command's stdin.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints question and returns the trimmed answer. EOF with no input
// returns an empty answer.
func (p *prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; an empty answer selects def.
func (p *prompter) confirm(question string, def bool) (bool, error) {
	answer, err := p.ask(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// tokenConfirmer asks before sending requests over the token threshold.
func (p *prompter) tokenConfirmer(autoApprove bool) analysis.Confirmer {
	return analysis.ConfirmFunc(func(_ context.Context, est analysis.Estimate) (bool, error) {
		if autoApprove {
			return true, nil
		}
		question := fmt.Sprintf(
			"%s is estimated at %d tokens for %s (threshold %d). Proceed? (y/N): ",
			operationLabel(est.Operation), est.Tokens, est.Model, est.Threshold,
		)
		return p.confirm(question, false)
	})
}

func operationLabel(op string) string {
	switch op {
	case "compare_transcripts":
		return "Transcript comparison"
	case "analyze_content":
		return "Content analysis"
	default:
		return op
	}
}
