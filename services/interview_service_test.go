package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"neurovisa/db"
	"neurovisa/evaluator"
	"neurovisa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	l.calls++
	return l.allowed, l.err
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
func newClock() *clock                   { return &clock{t: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)} }

type fixture struct {
	svc      *InterviewService
	sessions *db.MemorySessionStore
	users    *db.MemoryUserStore
	limiter  *stubLimiter
	clock    *clock
	user     *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions: db.NewMemorySessionStore(),
		users:    db.NewMemoryUserStore(),
		limiter:  &stubLimiter{allowed: true},
		clock:    newClock(),
	}
	f.user = &models.User{Email: "ana@example.com", VisaType: "F-1 Student", TargetCountry: "USA", IsActive: true}
	require.NoError(t, f.users.CreateUser(context.Background(), f.user))

	f.svc = NewInterviewService(f.sessions, f.users, f.limiter,
		WithClock(f.clock.now),
		WithGenerator(evaluator.NewGenerator(evaluator.NewSeededSource(1))),
	)
	return f
}

func (f *fixture) answer(t *testing.T, session *models.InterviewSession, i int, text string) *models.Answer {
	t.Helper()
	a, err := f.svc.SubmitAnswer(context.Background(), f.user.ID, AnswerRequest{
		QuestionID:    session.Questions[i].ID,
		UserAudioText: text,
	})
	require.NoError(t, err)
	return a
}

func TestStartSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.StartSession(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, first.Status)
	require.Len(t, first.Questions, 5)
	for i, q := range first.Questions {
		assert.Equal(t, i+1, q.Order)
		assert.NotEmpty(t, q.ID)
	}

	t.Run("a new start interrupts the open session", func(t *testing.T) {
		f.clock.advance(90 * time.Second)
		second, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		old, err := f.svc.GetSession(ctx, f.user.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInterrupted, old.Status)
		require.NotNil(t, old.TotalDuration)
		assert.Equal(t, 90, *old.TotalDuration)
		assert.Nil(t, old.Score)
		assert.Nil(t, old.ImprovementPlan)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.StartSession(ctx, primitive.NewObjectID())
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

// closingStore completes a session right after handing out an in-progress copy of it
type closingStore struct {
	*db.MemorySessionStore
}

func (s closingStore) GetSessionByQuestion(ctx context.Context, questionID string) (*models.InterviewSession, error) {
	session, err := s.MemorySessionStore.GetSessionByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	closed := *session
	closed.Status = models.StatusCompleted
	if err := s.UpdateSession(ctx, &closed); err != nil {
		return nil, err
	}
	return session, nil
}

func TestSubmitAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the evaluation on the question", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		a := f.answer(t, session, 0, "I borrowed money from friends")
		require.NotNil(t, a.Feedback)
		assert.Equal(t, 41, a.Feedback.Score)
		assert.Equal(t, a.ID, a.Feedback.AnswerID)
		assert.Equal(t, a.Feedback.EvaluationJSON.FollowUp, a.Feedback.FollowUp)

		stored, err := f.svc.GetSession(ctx, f.user.ID, session.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Questions[0].Answer)
		assert.Equal(t, a.ID, stored.Questions[0].Answer.ID)
	})

	t.Run("stress mode and personality reach the evaluator", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		a, err := f.svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{
			QuestionID:         session.Questions[0].ID,
			UserAudioText:      "I borrowed money from friends",
			StressMode:         true,
			OfficerPersonality: "Strict",
		})
		require.NoError(t, err)
		assert.Equal(t, 31, a.Feedback.Score)
		assert.True(t, strings.HasPrefix(a.Feedback.EvaluationJSON.Feedback, "Be very precise here. "))
	})

	t.Run("resubmission replaces the answer", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		f.answer(t, session, 1, "I borrowed money from friends")
		second := f.answer(t, session, 1, "")

		stored, err := f.svc.GetSession(ctx, f.user.ID, session.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, stored.Questions[1].Answer.ID)
		assert.Equal(t, 66, stored.Questions[1].Answer.Feedback.Score)
	})

	t.Run("another user's question is forbidden", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		_, err = f.svc.SubmitAnswer(ctx, primitive.NewObjectID(), AnswerRequest{QuestionID: session.Questions[0].ID})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown question", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{QuestionID: "nope"})
		require.ErrorIs(t, err, ErrQuestionNotFound)
	})

	t.Run("closed session rejects answers", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)
		_, err = f.svc.CompleteSession(ctx, f.user.ID, session.ID, CompleteRequest{})
		require.NoError(t, err)

		_, err = f.svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{QuestionID: session.Questions[0].ID})
		require.ErrorIs(t, err, ErrSessionClosed)
	})

	t.Run("session closed while evaluating", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		svc := NewInterviewService(closingStore{f.sessions}, f.users, nil, WithClock(f.clock.now))
		_, err = svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{QuestionID: session.Questions[0].ID, UserAudioText: "hello"})
		require.ErrorIs(t, err, ErrSessionClosed)

		stored, err := f.svc.GetSession(ctx, f.user.ID, session.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, stored.Status)
		assert.Nil(t, stored.Questions[0].Answer)
	})

	t.Run("first answer records session settings", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		_, err = f.svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{
			QuestionID:         session.Questions[0].ID,
			UserAudioText:      "hello",
			StressMode:         true,
			OfficerPersonality: "Strict",
		})
		require.NoError(t, err)
		_, err = f.svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{
			QuestionID:         session.Questions[1].ID,
			UserAudioText:      "hello",
			OfficerPersonality: "Friendly",
		})
		require.NoError(t, err)

		stored, err := f.svc.GetSession(ctx, f.user.ID, session.ID)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"stress_mode": true, "officer_personality": "Strict"}, stored.Metadata)
	})

	t.Run("rate limited", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)
		f.limiter.allowed = false

		_, err = f.svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{QuestionID: session.Questions[0].ID})
		require.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, 1, f.limiter.calls)
	})

	t.Run("limiter errors fail open", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)
		f.limiter.allowed = false
		f.limiter.err = errors.New("connection refused")

		_, err = f.svc.SubmitAnswer(ctx, f.user.ID, AnswerRequest{QuestionID: session.Questions[0].ID, UserAudioText: "hello"})
		require.NoError(t, err)
	})
}

func TestCompleteSession(t *testing.T) {
	ctx := context.Background()

	t.Run("floor average of scored answers", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		f.answer(t, session, 0, "I borrowed money from friends") // 41
		f.answer(t, session, 1, "")                              // 66
		f.clock.advance(5 * time.Minute)

		done, err := f.svc.CompleteSession(ctx, f.user.ID, session.ID, CompleteRequest{})
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, done.Status)
		require.NotNil(t, done.Score)
		assert.Equal(t, 53, *done.Score)
		require.NotNil(t, done.TotalDuration)
		assert.Equal(t, 300, *done.TotalDuration)
		require.NotNil(t, done.EndTime)
	})

	t.Run("no answers completes with zero", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		duration := 42
		done, err := f.svc.CompleteSession(ctx, f.user.ID, session.ID, CompleteRequest{TotalDuration: &duration})
		require.NoError(t, err)
		require.NotNil(t, done.Score)
		assert.Equal(t, 0, *done.Score)
		assert.Equal(t, 42, *done.TotalDuration)
	})

	t.Run("someone else's session is not found", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.svc.StartSession(ctx, f.user.ID)
		require.NoError(t, err)

		_, err = f.svc.CompleteSession(ctx, primitive.NewObjectID(), session.ID, CompleteRequest{})
		require.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestGetSessionAttachesPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	session, err := f.svc.StartSession(ctx, f.user.ID)
	require.NoError(t, err)

	open, err := f.svc.GetSession(ctx, f.user.ID, session.ID)
	require.NoError(t, err)
	assert.Nil(t, open.ImprovementPlan)

	f.answer(t, session, 0, "I borrowed money from friends")
	_, err = f.svc.CompleteSession(ctx, f.user.ID, session.ID, CompleteRequest{})
	require.NoError(t, err)

	done, err := f.svc.GetSession(ctx, f.user.ID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, done.ImprovementPlan)
	assert.Equal(t, evaluator.GenerateImprovementPlan(evaluator.SessionSummary{Score: 41}), *done.ImprovementPlan)

	list, err := f.svc.ListSessions(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestInterruptStaleSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	stale, err := f.svc.StartSession(ctx, f.user.ID)
	require.NoError(t, err)
	f.answer(t, stale, 0, "")

	other := &models.User{Email: "ben@example.com", IsActive: true}
	require.NoError(t, f.users.CreateUser(ctx, other))
	f.clock.advance(90 * time.Minute)
	fresh, err := f.svc.StartSession(ctx, other.ID)
	require.NoError(t, err)

	f.clock.advance(time.Hour)
	n, err := f.svc.InterruptStaleSessions(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.svc.GetSession(ctx, f.user.ID, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInterrupted, got.Status)
	require.NotNil(t, got.Score)
	assert.Equal(t, 66, *got.Score)

	still, err := f.svc.GetSession(ctx, other.ID, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, still.Status)
}
