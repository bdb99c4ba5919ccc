package foulplay

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubInvoker struct {
	reply  string
	err    error
	prompt string
}

func (s *stubInvoker) Invoke(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

const tackleDescription = "The raider was tackled by three defenders, but one defender pulled his jersey from behind."

func TestAnalyzeParsesVerdict(t *testing.T) {
	inv := &stubInvoker{reply: `{"hasFoulPlay": true, "analysis": "Jersey pulling is a technical foul."}`}
	a := New(inv, time.Second)

	v, err := a.Analyze(context.Background(), tackleDescription)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !v.HasFoulPlay || v.Analysis != "Jersey pulling is a technical foul." {
		t.Errorf("verdict = %+v", v)
	}
	if !strings.Contains(inv.prompt, tackleDescription) {
		t.Errorf("prompt missing description: %q", inv.prompt)
	}
	if !strings.Contains(inv.prompt, "hasFoulPlay") {
		t.Errorf("prompt missing response shape: %q", inv.prompt)
	}
}

func TestAnalyzeAcceptsFencedJSON(t *testing.T) {
	inv := &stubInvoker{reply: "```json\n{\"hasFoulPlay\": false, \"analysis\": \"A clean three-man tackle.\"}\n```"}
	a := New(inv, time.Second)

	v, err := a.Analyze(context.Background(), tackleDescription)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if v.HasFoulPlay || v.Analysis != "A clean three-man tackle." {
		t.Errorf("verdict = %+v", v)
	}
}

func TestAnalyzeDescriptionBounds(t *testing.T) {
	inv := &stubInvoker{reply: `{"hasFoulPlay": false, "analysis": "ok"}`}
	a := New(inv, time.Second)

	cases := []struct {
		name string
		desc string
		ok   bool
	}{
		{"too short", "short one", false}, // 9 characters
		{"min length", "ten chars!", true},
		{"max length", strings.Repeat("x", MaxDescriptionLen), true},
		{"too long", strings.Repeat("x", MaxDescriptionLen+1), false},
		{"whitespace only", "                ", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.Analyze(context.Background(), tc.desc)
			if tc.ok && err != nil {
				t.Errorf("Analyze(%q): %v", tc.desc, err)
			}
			if !tc.ok && !errors.Is(err, ErrDescriptionLength) {
				t.Errorf("Analyze(%q) err = %v, want ErrDescriptionLength", tc.desc, err)
			}
		})
	}
}

func TestAnalyzeInvokerFailure(t *testing.T) {
	wantErr := errors.New("provider down")
	a := New(&stubInvoker{err: wantErr}, time.Second)

	if _, err := a.Analyze(context.Background(), tackleDescription); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped provider error", err)
	}
}

func TestAnalyzeRejectsNonJSONReply(t *testing.T) {
	for _, reply := range []string{
		"the play looked fine to me",
		`{"hasFoulPlay": true}`, // no analysis text
		`{"hasFoulPlay": "maybe", "analysis": "x"}`,
	} {
		a := New(&stubInvoker{reply: reply}, time.Second)
		if _, err := a.Analyze(context.Background(), tackleDescription); err == nil {
			t.Errorf("reply %q: expected parse error", reply)
		}
	}
}
