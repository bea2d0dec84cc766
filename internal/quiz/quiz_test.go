package quiz

import (
	"errors"
	"testing"
)

func TestAnswerAdvancesOneStepAtATime(t *testing.T) {
	t.Parallel()

	// Every combination of options must advance the walk by exactly one step.
	for _, first := range Questions[0].Options {
		for _, second := range Questions[1].Options {
			for _, third := range Questions[2].Options {
				e := New(nil)
				for i, choice := range []string{first, second, third} {
					if err := e.Answer(choice); err != nil {
						t.Fatalf("answer %q: %v", choice, err)
					}
					if got := e.State().Step; got != i+1 {
						t.Fatalf("expected step %d, got %d", i+1, got)
					}
				}

				if !e.IsComplete() {
					t.Fatalf("expected quiz to be complete")
				}

				if err := e.Answer(third); !errors.Is(err, ErrQuizComplete) {
					t.Fatalf("expected ErrQuizComplete, got %v", err)
				}
				if got := e.State().Step; got != len(Questions) {
					t.Fatalf("step must not exceed %d, got %d", len(Questions), got)
				}
			}
		}
	}
}

func TestProfileKeepsFirstOccurrenceOrder(t *testing.T) {
	t.Parallel()

	e := New(nil)
	for _, choice := range []string{"Solving math problems", "Writing code", "Physics"} {
		if err := e.Answer(choice); err != nil {
			t.Fatalf("answer %q: %v", choice, err)
		}
	}

	profile, err := e.Profile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := "Engineer, Software Developer, Scientist / Engineer"
	if profile.String() != expected {
		t.Fatalf("expected %q, got %q", expected, profile.String())
	}
}

func TestProfileDeduplicates(t *testing.T) {
	t.Parallel()

	questions := []Question{
		{Prompt: "a", Options: []string{"Psychology", "Economics"}},
		{Prompt: "b", Options: []string{"Psychology", "Unmapped"}},
		{Prompt: "c", Options: []string{"Unmapped"}},
	}

	e := New(questions)
	for _, choice := range []string{"Psychology", "Psychology", "Unmapped"} {
		if err := e.Answer(choice); err != nil {
			t.Fatalf("answer %q: %v", choice, err)
		}
	}

	profile, err := e.Profile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(profile) != 2 || profile[0] != "Counselor / Therapist" || profile[1] != DefaultLabel {
		t.Fatalf("unexpected profile: %v", profile)
	}
}

func TestProfileRequiresCompletion(t *testing.T) {
	t.Parallel()

	e := New(nil)
	if err := e.Answer("Creating art"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := e.Profile(); !errors.Is(err, ErrQuizIncomplete) {
		t.Fatalf("expected ErrQuizIncomplete, got %v", err)
	}
}

func TestAnswerRejectsUnknownOption(t *testing.T) {
	t.Parallel()

	e := New(nil)
	if err := e.Answer("Writing code"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
	if e.State().Step != 0 || len(e.State().Answers) != 0 {
		t.Fatalf("state must be untouched: %+v", e.State())
	}
}

func TestStartResets(t *testing.T) {
	t.Parallel()

	e := New(nil)
	_ = e.Answer("Leading teams")
	e.Start()

	q, ok := e.Current()
	if !ok || q.Prompt != Questions[0].Prompt {
		t.Fatalf("expected first question after restart, got %+v (ok=%v)", q, ok)
	}
	if len(e.State().Answers) != 0 {
		t.Fatalf("answers must be cleared")
	}
}

func TestBreakdown(t *testing.T) {
	t.Parallel()

	e := New(nil)
	_ = e.Answer("Helping people")

	breakdown := e.Breakdown()
	if len(breakdown) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(breakdown))
	}
	if got := breakdown[0].String(); got != "- Helping people → Social Worker / Psychologist" {
		t.Fatalf("unexpected suggestion line: %q", got)
	}
}
