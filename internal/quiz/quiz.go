// Package quiz implements the short career assessment walked by the user
// one question at a time.
package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrQuizComplete   = errors.New("quiz is already complete")
	ErrQuizIncomplete = errors.New("quiz is not complete")
	ErrUnknownOption  = errors.New("choice is not an option of the current question")
)

// State is the progress of one quiz walk. Step is always within [0, len(questions)].
type State struct {
	Step    int      `json:"step"`
	Answers []string `json:"answers"`
}

// Engine walks a fixed list of questions.
type Engine struct {
	questions []Question
	state     State
}

// New creates an engine over the provided questions. Nil means the default assessment.
func New(questions []Question) *Engine {
	if questions == nil {
		questions = Questions
	}
	return &Engine{questions: questions}
}

// Start resets the walk to the first question.
func (e *Engine) Start() {
	e.state = State{}
}

// Answer records choice for the current question and advances to the next one.
func (e *Engine) Answer(choice string) error {
	if e.IsComplete() {
		return ErrQuizComplete
	}

	current := e.questions[e.state.Step]
	if !current.hasOption(choice) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, choice)
	}

	e.state.Answers = append(e.state.Answers, choice)
	e.state.Step++

	return nil
}

func (e *Engine) IsComplete() bool {
	return e.state.Step == len(e.questions)
}

// Current returns the question awaiting an answer. ok is false once complete.
func (e *Engine) Current() (q Question, ok bool) {
	if e.IsComplete() {
		return Question{}, false
	}
	return e.questions[e.state.Step], true
}

// State returns a copy of the current progress.
func (e *Engine) State() State {
	answers := make([]string, len(e.state.Answers))
	copy(answers, e.state.Answers)
	return State{Step: e.state.Step, Answers: answers}
}

// Len returns the number of questions in the walk.
func (e *Engine) Len() int {
	return len(e.questions)
}

// Profile maps every answer to a career label and removes duplicates,
// keeping the order in which labels first appear.
func (e *Engine) Profile() (Profile, error) {
	if !e.IsComplete() {
		return nil, ErrQuizIncomplete
	}

	seen := make(map[string]struct{}, len(e.state.Answers))
	profile := make(Profile, 0, len(e.state.Answers))
	for _, answer := range e.state.Answers {
		label := LabelFor(answer)
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		profile = append(profile, label)
	}

	return profile, nil
}

// Breakdown pairs every recorded answer with its career label.
func (e *Engine) Breakdown() []Suggestion {
	suggestions := make([]Suggestion, 0, len(e.state.Answers))
	for _, answer := range e.state.Answers {
		suggestions = append(suggestions, Suggestion{Answer: answer, Label: LabelFor(answer)})
	}
	return suggestions
}

// Suggestion is one answer together with the career it points to.
type Suggestion struct {
	Answer string `json:"answer"`
	Label  string `json:"label"`
}

func (s Suggestion) String() string {
	return fmt.Sprintf("- %s → %s", s.Answer, s.Label)
}

// Profile is the deduplicated set of career labels derived from a finished quiz.
type Profile []string

func (p Profile) String() string {
	return strings.Join(p, ", ")
}
