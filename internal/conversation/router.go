// Package conversation routes chat turns either to job search or to the LLM.
package conversation

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/spigell/pathfinder/internal/ai"
	"github.com/spigell/pathfinder/internal/jobsearch"
	"github.com/spigell/pathfinder/internal/logger"
	"github.com/spigell/pathfinder/internal/session"
	"github.com/spigell/pathfinder/internal/utils"
)

const (
	DomainInstruction = "You are a helpful and knowledgeable career counselling specialist. " +
		"Only respond to career-related questions. If a question is outside the career domain, politely refuse to answer."

	profileSentence = "\nThe user has completed a career quiz and their suggested profile is: "
	errorPrefix     = "⚠ Error: "
	maxLogLen       = 200
)

var (
	jobWords    = map[string]struct{}{"job": {}, "jobs": {}, "openings": {}, "opportunity": {}, "vacancy": {}}
	actionWords = map[string]struct{}{"find": {}, "search": {}, "looking": {}, "get": {}, "apply": {}}
)

// JobSearcher returns a ready-to-display reply for a job query.
type JobSearcher interface {
	Search(ctx context.Context, query, location string) string
}

type Router struct {
	jobs     JobSearcher
	llm      ai.Generator
	location string
	logger   *zap.Logger
}

// New creates a router. Location defaults to jobsearch.DefaultLocation.
func New(log *zap.Logger, jobs JobSearcher, llm ai.Generator, location string) (*Router, error) {
	if jobs == nil {
		return nil, errors.New("job searcher is required")
	}
	if llm == nil {
		return nil, errors.New("llm generator is required")
	}
	if strings.TrimSpace(location) == "" {
		location = jobsearch.DefaultLocation
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Router{
		jobs:     jobs,
		llm:      llm,
		location: location,
		logger:   log,
	}, nil
}

// Handle answers one user turn and records both sides of it in the session.
func (r *Router) Handle(ctx context.Context, input string, sess *session.Session) string {
	history := sess.Messages()
	sess.Append(session.RoleUser, input)

	log := logger.WithSession(r.logger, sess.ID)

	var reply string
	if IsJobQuery(input) {
		log.Info("routing turn to job search", zap.String("query", utils.TruncateForLog(input, maxLogLen)))
		reply = r.jobs.Search(ctx, input, r.location)
	} else {
		profile, _ := sess.Profile()
		prompt := BuildPrompt(profile.String(), history, input)

		log.Debug("routing turn to llm", zap.String("model", r.llm.Model()), zap.Bool("with_profile", len(profile) > 0))

		var err error
		reply, err = r.llm.GenerateContent(ctx, prompt)
		if err != nil {
			log.Warn("llm request failed", zap.Error(err))
			reply = errorPrefix + err.Error()
		}
	}

	sess.Append(session.RoleAssistant, reply)
	return reply
}

// BuildPrompt assembles the LLM prompt for a turn. history holds the messages
// before the current input.
func BuildPrompt(profile string, history []session.Message, input string) string {
	var b strings.Builder
	b.WriteString(DomainInstruction)
	if profile != "" {
		b.WriteString(profileSentence)
		b.WriteString(profile)
		b.WriteString(".")
	}
	b.WriteString("\n\n")

	turns := make([]session.Message, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, session.Message{Role: session.RoleUser, Content: input})
	b.WriteString(session.SerializeHistory(turns))

	return b.String()
}

// IsJobQuery reports whether input names a job word and an action word.
func IsJobQuery(input string) bool {
	var hasJob, hasAction bool
	for _, token := range tokenize(input) {
		if _, ok := jobWords[token]; ok {
			hasJob = true
		}
		if _, ok := actionWords[token]; ok {
			hasAction = true
		}
	}
	return hasJob && hasAction
}

func tokenize(input string) []string {
	return strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
