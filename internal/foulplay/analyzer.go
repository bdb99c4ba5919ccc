// Package foulplay checks a free-text play description for potential rule
// violations via the text generator. Like commentary, it is strictly
// advisory: a failed analysis is reported to the caller and changes nothing.
package foulplay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mkrishnan/kabaddi-live/internal/telemetry"
)

const (
	// MinDescriptionLen and MaxDescriptionLen bound the play description.
	MinDescriptionLen = 10
	MaxDescriptionLen = 500
)

// ErrDescriptionLength rejects a description outside the accepted bounds.
var ErrDescriptionLength = fmt.Errorf("play description must be %d to %d characters", MinDescriptionLen, MaxDescriptionLen)

// Verdict is the structured analysis result.
type Verdict struct {
	HasFoulPlay bool   `json:"hasFoulPlay"`
	Analysis    string `json:"analysis"`
}

// Invoker sends one prompt to the text generator and returns its output.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Analyzer turns a play description into a foul-play verdict.
type Analyzer struct {
	inv     Invoker
	timeout time.Duration
}

func New(inv Invoker, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Analyzer{inv: inv, timeout: timeout}
}

// Analyze validates the description, asks the generator for a JSON verdict,
// and parses it back out.
func (a *Analyzer) Analyze(ctx context.Context, playDescription string) (Verdict, error) {
	desc := strings.TrimSpace(playDescription)
	if n := utf8.RuneCountInString(desc); n < MinDescriptionLen || n > MaxDescriptionLen {
		return Verdict{}, ErrDescriptionLength
	}

	telemetry.Metrics.FoulPlayRequests.Inc()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.inv.Invoke(ctx, buildPrompt(desc))
	if err != nil {
		telemetry.Metrics.FoulPlayFailures.Inc()
		return Verdict{}, fmt.Errorf("foul play analysis: %w", err)
	}

	verdict, err := parseVerdict(text)
	if err != nil {
		telemetry.Metrics.FoulPlayFailures.Inc()
		telemetry.Warnf("foulplay: unparseable verdict: %v", err)
		return Verdict{}, err
	}
	return verdict, nil
}

func buildPrompt(desc string) string {
	var b strings.Builder
	b.WriteString("You are a Kabaddi referee reviewing a play for rule violations: jersey pulling, dangerous tackles, blocking the raider's retreat, or any other foul play.\n\n")
	fmt.Fprintf(&b, "Play description:\n%s\n\n", desc)
	b.WriteString(`Respond with a single JSON object and nothing else, in the form {"hasFoulPlay": true or false, "analysis": "one short paragraph explaining the verdict"}.`)
	return b.String()
}

// parseVerdict extracts the JSON object from the generator's output. Models
// sometimes wrap the object in code fences or prose, so scan for the braces.
func parseVerdict(text string) (Verdict, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return Verdict{}, errors.New("verdict response contains no JSON object")
	}
	var v Verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if v.Analysis == "" {
		return Verdict{}, errors.New("verdict missing analysis text")
	}
	return v, nil
}
