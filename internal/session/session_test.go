package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spigell/pathfinder/internal/quiz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeQuiz(t *testing.T, s *Session, answers ...string) {
	t.Helper()
	for _, a := range answers {
		require.NoError(t, s.AnswerQuiz(a))
	}
}

func TestSessionDerivesProfileOnCompletion(t *testing.T) {
	s := New("s1")

	_, ok := s.Profile()
	assert.False(t, ok)

	completeQuiz(t, s, "Solving math problems", "Writing code")
	_, ok = s.Profile()
	assert.False(t, ok, "profile must not exist before the last answer")

	completeQuiz(t, s, "Physics")
	profile, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Engineer, Software Developer, Scientist / Engineer", profile.String())

	err := s.AnswerQuiz("Physics")
	assert.True(t, errors.Is(err, quiz.ErrQuizComplete))
}

func TestSessionProfileSurvivesRestart(t *testing.T) {
	s := New("s1")
	completeQuiz(t, s, "Creating art", "Designing posters", "Painting")

	s.StartQuiz()
	profile, ok := s.Profile()
	require.True(t, ok)
	assert.Equal(t, "Graphic Designer, UI/UX Designer, Artist / Illustrator", profile.String())

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Quiz.Step)
	assert.False(t, snap.Quiz.Complete)
	require.NotNil(t, snap.Quiz.Question)
	assert.Equal(t, quiz.Questions[0].Prompt, snap.Quiz.Question.Prompt)
}

func TestSnapshotCopiesMessages(t *testing.T) {
	s := New("s1")
	s.Append(RoleUser, "hi")

	snap := s.Snapshot()
	snap.Messages[0].Content = "changed"

	assert.Equal(t, "hi", s.Messages()[0].Content)
}

func TestSnapshotBreakdownWhenComplete(t *testing.T) {
	s := New("s1")
	completeQuiz(t, s, "Leading teams", "Starting a business", "Economics")

	snap := s.Snapshot()
	assert.True(t, snap.Quiz.Complete)
	assert.Nil(t, snap.Quiz.Question)
	assert.Len(t, snap.Quiz.Breakdown, 3)
	assert.Equal(t, "Entrepreneur / Manager, Startup Founder, Economist / Business Analyst", snap.Profile)
}

func TestStoreIsolatesSessions(t *testing.T) {
	store := NewStore(time.Hour)
	a := store.Create()
	b := store.Create()
	require.NotEqual(t, a, b)

	require.NoError(t, store.With(a, func(s *Session) error {
		s.Append(RoleUser, "only in a")
		return nil
	}))

	require.NoError(t, store.With(b, func(s *Session) error {
		assert.Empty(t, s.Messages())
		return nil
	}))
}

func TestStoreEnsure(t *testing.T) {
	store := NewStore(0)
	id := store.Create()

	assert.Equal(t, id, store.Ensure(id))
	other := store.Ensure("missing")
	assert.NotEqual(t, "missing", other)
	assert.Equal(t, 2, store.Len())
}

func TestStoreWithUnknownSession(t *testing.T) {
	store := NewStore(0)
	err := store.With("nope", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSerialisesSameSession(t *testing.T) {
	store := NewStore(0)
	id := store.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.With(id, func(s *Session) error {
				s.Append(RoleUser, "q")
				s.Append(RoleAssistant, "a")
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, store.With(id, func(s *Session) error {
		msgs := s.Messages()
		require.Len(t, msgs, 100)
		for i := 0; i < len(msgs); i += 2 {
			assert.Equal(t, RoleUser, msgs[i].Role)
			assert.Equal(t, RoleAssistant, msgs[i+1].Role)
		}
		return nil
	}))
}

func TestStoreSweepEvictsIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Hour)
	store.now = func() time.Time { return now }

	stale := store.Create()
	now = now.Add(50 * time.Minute)
	fresh := store.Create()
	now = now.Add(20 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	assert.ErrorIs(t, store.With(stale, func(*Session) error { return nil }), ErrNotFound)
	assert.NoError(t, store.With(fresh, func(*Session) error { return nil }))
}
