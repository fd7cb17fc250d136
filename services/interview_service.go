package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neurovisa/db"
	"neurovisa/evaluator"
	"neurovisa/internal/logger"
	"neurovisa/internal/ratelimit"
	"neurovisa/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnswerRequest is the answer submission payload
type AnswerRequest struct {
	QuestionID         string `json:"question_id" binding:"required"`
	UserAudioText      string `json:"user_audio_text"`
	ResponseTimeMs     *int   `json:"response_time_ms"`
	EditCount          int    `json:"edit_count"`
	StressMode         bool   `json:"stress_mode"`
	OfficerPersonality string `json:"officer_personality"`
}

// CompleteRequest is the optional body of the completion call
type CompleteRequest struct {
	Status        string `json:"status"`
	TotalDuration *int   `json:"total_duration"`
}

type InterviewService struct {
	sessions  db.SessionStore
	users     db.UserStore
	limiter   ratelimit.Limiter
	generator *evaluator.Generator
	now       func() time.Time
}

type Option func(*InterviewService)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *InterviewService) { s.now = now }
}

// WithGenerator overrides the question generator
func WithGenerator(g *evaluator.Generator) Option {
	return func(s *InterviewService) { s.generator = g }
}

func NewInterviewService(sessions db.SessionStore, users db.UserStore, limiter ratelimit.Limiter, opts ...Option) *InterviewService {
	s := &InterviewService{
		sessions:  sessions,
		users:     users,
		limiter:   limiter,
		generator: evaluator.NewGenerator(nil),
		now:       time.Now,
	}
	if s.limiter == nil {
		s.limiter = ratelimit.NoopLimiter{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession interrupts any session still in progress and opens a new one
// with a question set tailored to the user's profile.
func (s *InterviewService) StartSession(ctx context.Context, userID primitive.ObjectID) (*models.InterviewSession, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	now := s.now().UTC()
	active, err := s.sessions.FindActiveSession(ctx, userID)
	switch {
	case err == nil:
		active.Close(models.StatusInterrupted, now, nil, false)
		if err := s.sessions.UpdateSession(ctx, active); err != nil {
			return nil, fmt.Errorf("failed to interrupt active session: %w", err)
		}
		logger.Log.WithField("session", active.ID.Hex()).Info("Interrupted previous session")
	case !errors.Is(err, db.ErrNotFound):
		return nil, err
	}

	specs := s.generator.GenerateQuestions(user.Profile())
	questions := make([]models.Question, len(specs))
	for i, q := range specs {
		questions[i] = models.Question{ID: uuid.NewString(), Text: q.Text, Order: q.Order}
	}

	session := &models.InterviewSession{
		UserID:    userID,
		StartTime: now,
		Status:    models.StatusInProgress,
		Questions: questions,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"session":   session.ID.Hex(),
		"user":      userID.Hex(),
		"questions": len(questions),
	}).Info("Started interview session")
	return session, nil
}

// SubmitAnswer evaluates an answer and stores it on its question
func (s *InterviewService) SubmitAnswer(ctx context.Context, userID primitive.ObjectID, req AnswerRequest) (*models.Answer, error) {
	allowed, err := s.limiter.Allow(ctx, userID.Hex())
	if err != nil {
		// Fail open when Redis is down
		logger.Log.WithError(err).Warn("Answer rate limiter unavailable")
	} else if !allowed {
		return nil, ErrRateLimited
	}

	session, err := s.sessions.GetSessionByQuestion(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbidden
	}
	if session.Status != models.StatusInProgress {
		return nil, ErrSessionClosed
	}
	question := session.FindQuestion(req.QuestionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	personality := evaluator.ParsePersonality(req.OfficerPersonality)
	result := evaluator.Evaluate(evaluator.EvaluationInput{
		QuestionText: question.Text,
		AnswerText:   req.UserAudioText,
		StressMode:   req.StressMode,
		Personality:  personality,
	})

	answerID := uuid.NewString()
	answer := &models.Answer{
		ID:             answerID,
		QuestionID:     question.ID,
		UserAudioText:  req.UserAudioText,
		ResponseTimeMs: req.ResponseTimeMs,
		EditCount:      req.EditCount,
		SubmittedAt:    s.now().UTC(),
		Feedback: &models.Feedback{
			ID:             uuid.NewString(),
			AnswerID:       answerID,
			EvaluationJSON: result,
			Score:          result.Score,
			FollowUp:       result.FollowUp,
		},
	}
	if err := s.sessions.SaveAnswer(ctx, session.ID, question.ID, answer); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return nil, ErrQuestionNotFound
		case errors.Is(err, db.ErrNotInProgress):
			return nil, ErrSessionClosed
		}
		return nil, err
	}

	// The first answer fixes the session's interview settings
	if session.Metadata == nil {
		metadata := map[string]any{
			"stress_mode":         req.StressMode,
			"officer_personality": string(personality),
		}
		if err := s.sessions.SetMetadata(ctx, session.ID, metadata); err != nil {
			logger.Log.WithError(err).WithField("session", session.ID.Hex()).Warn("Failed to record session metadata")
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"session":   session.ID.Hex(),
		"question":  question.ID,
		"score":     result.Score,
		"red_flags": len(result.Metrics.RedFlags),
	}).Debug("Evaluated answer")
	return answer, nil
}

// CompleteSession closes a session and records its aggregate score.
// Status defaults to completed; duration defaults to the time since start.
func (s *InterviewService) CompleteSession(ctx context.Context, userID, sessionID primitive.ObjectID, req CompleteRequest) (*models.InterviewSession, error) {
	session, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusCompleted
	}
	session.Close(status, s.now().UTC(), req.TotalDuration, true)
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns a session, with an improvement plan once it is completed
func (s *InterviewService) GetSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*models.InterviewSession, error) {
	session, err := s.getOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusCompleted {
		score := 0
		if session.Score != nil {
			score = *session.Score
		}
		plan := evaluator.GenerateImprovementPlan(evaluator.SessionSummary{Score: score})
		session.ImprovementPlan = &plan
	}
	return session, nil
}

func (s *InterviewService) ListSessions(ctx context.Context, userID primitive.ObjectID) ([]models.InterviewSession, error) {
	return s.sessions.ListSessions(ctx, userID)
}

// InterruptStaleSessions closes in-progress sessions that started more than maxAge ago
func (s *InterviewService) InterruptStaleSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	now := s.now().UTC()
	stale, err := s.sessions.FindStaleSessions(ctx, now.Add(-maxAge))
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range stale {
		session := &stale[i]
		session.Close(models.StatusInterrupted, now, nil, false)
		if err := s.sessions.UpdateSession(ctx, session); err != nil {
			logger.Log.WithError(err).WithField("session", session.ID.Hex()).Error("Failed to interrupt stale session")
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *InterviewService) getOwned(ctx context.Context, userID, sessionID primitive.ObjectID) (*models.InterviewSession, error) {
	session, err := s.sessions.GetSession(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}
