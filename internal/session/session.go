// Package session holds the per-browser-session conversation state.
package session

import (
	"fmt"
	"time"

	"github.com/spigell/pathfinder/internal/quiz"
)

// ResumeAnalysis is the outcome of the last resume upload in a session.
type ResumeAnalysis struct {
	Filename string    `json:"filename"`
	Labels   []string  `json:"labels,omitempty"`
	Scores   []float64 `json:"scores,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Session owns the message history and quiz progress of one browser session.
// It is not safe for concurrent use; Store serialises access.
type Session struct {
	ID       string
	messages []Message
	quiz     *quiz.Engine
	profile  quiz.Profile
	resume   *ResumeAnalysis
	lastSeen time.Time
}

// New creates an empty session.
func New(id string) *Session {
	return &Session{
		ID:       id,
		quiz:     quiz.New(nil),
		lastSeen: time.Now(),
	}
}

// Append adds a message to the end of the history.
func (s *Session) Append(role Role, content string) {
	s.messages = append(s.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the history.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Profile returns the career profile derived from the last completed quiz.
func (s *Session) Profile() (quiz.Profile, bool) {
	return s.profile, len(s.profile) > 0
}

func (s *Session) Quiz() *quiz.Engine {
	return s.quiz
}

// StartQuiz resets quiz progress. An earlier profile is kept until the quiz
// is completed again.
func (s *Session) StartQuiz() {
	s.quiz.Start()
}

// AnswerQuiz records a quiz answer and derives the profile once the last
// question has been answered.
func (s *Session) AnswerQuiz(choice string) error {
	if err := s.quiz.Answer(choice); err != nil {
		return err
	}

	if !s.quiz.IsComplete() {
		return nil
	}

	profile, err := s.quiz.Profile()
	if err != nil {
		return fmt.Errorf("deriving career profile: %w", err)
	}
	s.profile = profile

	return nil
}

func (s *Session) SetResume(analysis *ResumeAnalysis) {
	s.resume = analysis
}

// Snapshot is a read-only view of the session handed to the UI.
type Snapshot struct {
	ID       string          `json:"id"`
	Messages []Message       `json:"messages"`
	Quiz     QuizSnapshot    `json:"quiz"`
	Profile  string          `json:"profile,omitempty"`
	Resume   *ResumeAnalysis `json:"resume,omitempty"`
}

type QuizSnapshot struct {
	Step      int               `json:"step"`
	Total     int               `json:"total"`
	Complete  bool              `json:"complete"`
	Question  *quiz.Question    `json:"question,omitempty"`
	Breakdown []quiz.Suggestion `json:"breakdown,omitempty"`
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	qs := QuizSnapshot{
		Step:     s.quiz.State().Step,
		Total:    s.quiz.Len(),
		Complete: s.quiz.IsComplete(),
	}
	if q, ok := s.quiz.Current(); ok {
		qs.Question = &q
	}
	if qs.Complete {
		qs.Breakdown = s.quiz.Breakdown()
	}

	return Snapshot{
		ID:       s.ID,
		Messages: s.Messages(),
		Quiz:     qs,
		Profile:  s.profile.String(),
		Resume:   s.resume,
	}
}
