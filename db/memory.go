package db

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"neurovisa/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryURI selects the in-process stores instead of MongoDB
const MemoryURI = "memory://"

// MemoryUserStore keeps users in process memory
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// MemorySessionStore keeps sessions in process memory. Reads return copies.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[primitive.ObjectID]models.InterviewSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[primitive.ObjectID]models.InterviewSession)}
}

func cloneSession(s models.InterviewSession) models.InterviewSession {
	s.Questions = append([]models.Question(nil), s.Questions...)
	s.Metadata = maps.Clone(s.Metadata)
	return s
}

func (s *MemorySessionStore) CreateSession(_ context.Context, session *models.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	s.sessions[session.ID] = cloneSession(*session)
	return nil
}

func (s *MemorySessionStore) GetSession(_ context.Context, id, userID primitive.ObjectID) (*models.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || session.UserID != userID {
		return nil, ErrNotFound
	}
	out := cloneSession(session)
	return &out, nil
}

func (s *MemorySessionStore) GetSessionByQuestion(_ context.Context, questionID string) (*models.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.FindQuestion(questionID) != nil {
			out := cloneSession(session)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemorySessionStore) ListSessions(_ context.Context, userID primitive.ObjectID) ([]models.InterviewSession, error) {
	return s.filter(func(session models.InterviewSession) bool { return session.UserID == userID }), nil
}

func (s *MemorySessionStore) FindActiveSession(_ context.Context, userID primitive.ObjectID) (*models.InterviewSession, error) {
	active := s.filter(func(session models.InterviewSession) bool {
		return session.UserID == userID && session.Status == models.StatusInProgress
	})
	if len(active) == 0 {
		return nil, ErrNotFound
	}
	return &active[0], nil
}

func (s *MemorySessionStore) FindStaleSessions(_ context.Context, startedBefore time.Time) ([]models.InterviewSession, error) {
	return s.filter(func(session models.InterviewSession) bool {
		return session.Status == models.StatusInProgress && session.StartTime.Before(startedBefore)
	}), nil
}

func (s *MemorySessionStore) SaveAnswer(_ context.Context, sessionID primitive.ObjectID, questionID string, answer *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	session = cloneSession(session)
	q := session.FindQuestion(questionID)
	if q == nil {
		return ErrNotFound
	}
	if session.Status != models.StatusInProgress {
		return ErrNotInProgress
	}
	a := *answer
	q.Answer = &a
	s.sessions[sessionID] = session
	return nil
}

func (s *MemorySessionStore) UpdateSession(_ context.Context, session *models.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Status = session.Status
	stored.EndTime = session.EndTime
	stored.Score = session.Score
	stored.TotalDuration = session.TotalDuration
	s.sessions[session.ID] = stored
	return nil
}

func (s *MemorySessionStore) SetMetadata(_ context.Context, sessionID primitive.ObjectID, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[sessionID]
	if !ok || stored.Metadata != nil {
		return nil
	}
	stored.Metadata = maps.Clone(metadata)
	s.sessions[sessionID] = stored
	return nil
}

// filter returns matching copies, newest first
func (s *MemorySessionStore) filter(keep func(models.InterviewSession) bool) []models.InterviewSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.InterviewSession{}
	for _, session := range s.sessions {
		if keep(session) {
			out = append(out, cloneSession(session))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out
}
