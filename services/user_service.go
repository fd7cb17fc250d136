package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"neurovisa/db"
	"neurovisa/internal/logger"
	"neurovisa/models"
	"neurovisa/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegisterRequest is the sign-up payload
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required"`
	FullName      string `json:"full_name"`
	VisaType      string `json:"visa_type"`
	TargetCountry string `json:"target_country"`
}

type UserService struct {
	users db.UserStore
	now   func() time.Time
}

func NewUserService(users db.UserStore) *UserService {
	return &UserService{users: users, now: time.Now}
}

// Register creates an account after checking the email is free and the password is long enough
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := utils.NormalizeEmail(req.Email)

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if len(req.Password) < utils.MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:          email,
		HashedPassword: hash,
		FullName:       req.FullName,
		VisaType:       req.VisaType,
		TargetCountry:  req.TargetCountry,
		IsActive:       true,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	logger.Log.WithField("user", user.ID.Hex()).Info("Registered user")
	return user, nil
}

// Authenticate checks credentials and issues an access token
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !utils.CheckPasswordHash(password, user.HashedPassword) {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrInactiveUser
	}

	token, err := utils.GenerateJWTToken(user.ID.Hex(), user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
