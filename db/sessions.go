package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neurovisa/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionsCollection = "interview_sessions"

// SessionStore persists interview sessions with their embedded questions and answers
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.InterviewSession) error
	GetSession(ctx context.Context, id, userID primitive.ObjectID) (*models.InterviewSession, error)
	GetSessionByQuestion(ctx context.Context, questionID string) (*models.InterviewSession, error)
	ListSessions(ctx context.Context, userID primitive.ObjectID) ([]models.InterviewSession, error)
	FindActiveSession(ctx context.Context, userID primitive.ObjectID) (*models.InterviewSession, error)
	FindStaleSessions(ctx context.Context, startedBefore time.Time) ([]models.InterviewSession, error)
	SaveAnswer(ctx context.Context, sessionID primitive.ObjectID, questionID string, answer *models.Answer) error
	SetMetadata(ctx context.Context, sessionID primitive.ObjectID, metadata map[string]any) error
	UpdateSession(ctx context.Context, session *models.InterviewSession) error
}

type MongoSessionStore struct {
	coll *mongo.Collection
}

func NewSessionStore(database *mongo.Database) *MongoSessionStore {
	return &MongoSessionStore{coll: database.Collection(sessionsCollection)}
}

func (s *MongoSessionStore) CreateSession(ctx context.Context, session *models.InterviewSession) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession only returns sessions owned by userID
func (s *MongoSessionStore) GetSession(ctx context.Context, id, userID primitive.ObjectID) (*models.InterviewSession, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (s *MongoSessionStore) GetSessionByQuestion(ctx context.Context, questionID string) (*models.InterviewSession, error) {
	return s.findOne(ctx, bson.M{"questions.id": questionID})
}

func (s *MongoSessionStore) FindActiveSession(ctx context.Context, userID primitive.ObjectID) (*models.InterviewSession, error) {
	opts := options.FindOne().SetSort(bson.M{"startTime": -1})
	return s.findOne(ctx, bson.M{"userId": userID, "status": models.StatusInProgress}, opts)
}

// ListSessions returns the user's sessions, newest first
func (s *MongoSessionStore) ListSessions(ctx context.Context, userID primitive.ObjectID) ([]models.InterviewSession, error) {
	opts := options.Find().SetSort(bson.M{"startTime": -1})
	return s.find(ctx, bson.M{"userId": userID}, opts)
}

func (s *MongoSessionStore) FindStaleSessions(ctx context.Context, startedBefore time.Time) ([]models.InterviewSession, error) {
	filter := bson.M{
		"status":    models.StatusInProgress,
		"startTime": bson.M{"$lt": startedBefore},
	}
	return s.find(ctx, filter, options.Find())
}

// SaveAnswer attaches an answer to one embedded question of a session that
// is still in progress. A closed session yields ErrNotInProgress.
func (s *MongoSessionStore) SaveAnswer(ctx context.Context, sessionID primitive.ObjectID, questionID string, answer *models.Answer) error {
	filter := bson.M{"_id": sessionID, "questions.id": questionID, "status": models.StatusInProgress}
	update := bson.M{"$set": bson.M{"questions.$.answer": answer}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": sessionID, "questions.id": questionID})
	if err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}
	if n > 0 {
		return ErrNotInProgress
	}
	return ErrNotFound
}

// SetMetadata records session settings once. Later calls leave them as they are.
func (s *MongoSessionStore) SetMetadata(ctx context.Context, sessionID primitive.ObjectID, metadata map[string]any) error {
	// null matches both a missing and a null field
	filter := bson.M{"_id": sessionID, "metadata": nil}
	if _, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"metadata": metadata}}); err != nil {
		return fmt.Errorf("failed to set session metadata: %w", err)
	}
	return nil
}

// UpdateSession writes the lifecycle fields back
func (s *MongoSessionStore) UpdateSession(ctx context.Context, session *models.InterviewSession) error {
	update := bson.M{"$set": bson.M{
		"status":        session.Status,
		"endTime":       session.EndTime,
		"score":         session.Score,
		"totalDuration": session.TotalDuration,
	}}
	res, err := s.coll.UpdateByID(ctx, session.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoSessionStore) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := s.coll.FindOne(ctx, filter, opts...).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	return &session, nil
}

func (s *MongoSessionStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.InterviewSession, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []models.InterviewSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}
