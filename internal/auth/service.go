// Package auth checks credentials against the stored user list and issues API tokens.
package auth

import (
	"context"
	"log/slog"
	"strings"

	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/repository"
	"carmarket/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the profile submitted at registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"`
}

// Service performs stateless credential checks.
type Service struct {
	users repository.UserRepository
	cost  int
}

// NewService creates an auth Service.
func NewService(users repository.UserRepository) *Service {
	return &Service{users: users, cost: bcrypt.DefaultCost}
}

// Register validates the profile, stores the user with a hashed password and
// returns the redacted user. Emails are unique by exact match.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Name, email, and password are required")
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePhone(in.Phone); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:    in.Email,
		Name:     in.Name,
		Phone:    in.Phone,
		Avatar:   in.Avatar,
		Bio:      in.Bio,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.Logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	redacted := user.Redacted()
	return &redacted, nil
}

// Login matches the email exactly and compares the password against the
// stored hash. Unknown emails and wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if models.IsNotFound(err) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	redacted := user.Redacted()
	return &redacted, nil
}

// UserByID resolves a token subject to the redacted stored user.
func (s *Service) UserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	redacted := user.Redacted()
	return &redacted, nil
}

// HashPassword hashes a password with the service cost. Used when seeding.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
