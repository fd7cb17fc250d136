package models

import (
	"time"

	"neurovisa/evaluator"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusInProgress  = "in_progress"
	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
)

// InterviewSession is one mock interview. Questions, answers and feedback are embedded.
type InterviewSession struct {
	ID              primitive.ObjectID         `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID         `bson:"userId" json:"user_id"`
	StartTime       time.Time                  `bson:"startTime" json:"start_time"`
	EndTime         *time.Time                 `bson:"endTime,omitempty" json:"end_time"`
	Status          string                     `bson:"status" json:"status"`
	Score           *int                       `bson:"score,omitempty" json:"score"`
	TotalDuration   *int                       `bson:"totalDuration,omitempty" json:"total_duration"` // seconds
	Metadata        map[string]any             `bson:"metadata,omitempty" json:"session_metadata"`
	Questions       []Question                 `bson:"questions" json:"questions"`
	ImprovementPlan *evaluator.ImprovementPlan `bson:"-" json:"improvement_plan"`
}

type Question struct {
	ID     string  `bson:"id" json:"id"`
	Text   string  `bson:"text" json:"text"`
	Order  int     `bson:"order" json:"order"`
	Answer *Answer `bson:"answer,omitempty" json:"answer,omitempty"`
}

type Answer struct {
	ID             string    `bson:"id" json:"id"`
	QuestionID     string    `bson:"questionId" json:"question_id"`
	UserAudioText  string    `bson:"userAudioText" json:"user_audio_text"`
	ResponseTimeMs *int      `bson:"responseTimeMs,omitempty" json:"response_time_ms"`
	EditCount      int       `bson:"editCount" json:"edit_count"`
	SubmittedAt    time.Time `bson:"submittedAt" json:"submitted_at"`
	Feedback       *Feedback `bson:"feedback,omitempty" json:"feedback"`
}

// Feedback stores the evaluation verbatim alongside its score
type Feedback struct {
	ID             string                     `bson:"id" json:"id"`
	AnswerID       string                     `bson:"answerId" json:"answer_id"`
	EvaluationJSON evaluator.EvaluationResult `bson:"evaluation" json:"evaluation_json"`
	Score          int                        `bson:"score" json:"score"`
	FollowUp       *string                    `bson:"followUp,omitempty" json:"follow_up"`
}

// FindQuestion returns the question with the given id, or nil
func (s *InterviewSession) FindQuestion(id string) *Question {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// AverageScore is the floor of the mean per-answer score. Answers without
// feedback are left out rather than counted as zero. ok is false when nothing was scored.
func (s *InterviewSession) AverageScore() (avg int, ok bool) {
	sum, n := 0, 0
	for _, q := range s.Questions {
		if q.Answer == nil || q.Answer.Feedback == nil {
			continue
		}
		sum += q.Answer.Feedback.Score
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / n, true
}

// Close ends the session with the given status. The score is only set when
// something was scored, unless zeroIfEmpty is true.
func (s *InterviewSession) Close(status string, now time.Time, duration *int, zeroIfEmpty bool) {
	s.Status = status
	s.EndTime = &now

	if duration == nil {
		secs := int(now.Sub(s.StartTime.UTC()).Seconds())
		duration = &secs
	}
	s.TotalDuration = duration

	if avg, ok := s.AverageScore(); ok {
		s.Score = &avg
	} else if zeroIfEmpty {
		zero := 0
		s.Score = &zero
	}
}
