package repository

import (
	"context"
	"log/slog"
	"sync"

	"carmarket/internal/models"
	"carmarket/internal/observability"
	"carmarket/internal/store"
)

// UserRepository defines persistence operations for registered users.
// Stored users keep their password hash; callers redact before exposing them.
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create fails with a validation error when the email is already taken.
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct {
	mu    sync.Mutex
	users collection[models.User]
	now   clock
	log   *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(s store.Store) UserRepository {
	return &userRepository{
		users: collection[models.User]{store: s, key: store.KeyUsers},
		now:   systemClock,
		log:   observability.NewRepoLogger(store.KeyUsers),
	}
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users.load(ctx)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(ctx, "User", id, func(u *models.User) bool { return u.ID == id })
}

// GetByEmail matches the email exactly, including case.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, "User", email, func(u *models.User) bool { return u.Email == email })
}

func (r *userRepository) find(ctx context.Context, resource, id string, match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.users.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(users, match)
	if i < 0 {
		return nil, models.NewNotFoundError(resource, id)
	}
	return &users[i], nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.users.load(ctx)
	if err != nil {
		return err
	}
	if indexOf(users, func(u *models.User) bool { return u.Email == user.Email }) >= 0 {
		return models.NewValidationError("User already exists")
	}

	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}

	if err := r.users.save(ctx, append(users, *user)); err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, user.ID, slog.String("email", user.Email))
	return nil
}
