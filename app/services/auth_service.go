package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/Rakhulsr/go-blog/app/models"
	"github.com/Rakhulsr/go-blog/app/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type RegisterInput struct {
	Username        string `validate:"required,min=3,max=50"`
	FullName        string `validate:"required,min=3,max=100"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type AuthService struct {
	users     repositories.UserRepositoryImpl
	validator *validator.Validate
	log       *logrus.Logger
}

func NewAuthService(users repositories.UserRepositoryImpl, log *logrus.Logger) *AuthService {
	return &AuthService{users: users, validator: newValidator(), log: log}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate(s.validator, &input); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateUsername), errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	return user, nil
}

// Authenticate returns ErrNotFound for an unknown email and ErrInvalidCredentials
// for a wrong password.
func (s *AuthService) Authenticate(ctx context.Context, input LoginInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate(s.validator, &input); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", input.Email, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account for %s", ErrNotFound, input.Email)
	}
	if !helpers.PasswordCompare(user.PasswordHash, []byte(input.Password)) {
		s.log.WithField("user_id", user.ID).Warn("wrong password")
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) User(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return user, nil
}
