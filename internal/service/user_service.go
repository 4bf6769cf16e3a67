package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-market/internal/auth"
	"campus-market/internal/domain"
	"campus-market/internal/repository"
	"campus-market/internal/session"
	"campus-market/internal/validate"
)

// UserService describes account lifecycle and session operations.
type UserService interface {
	// Register creates an account and logs it in immediately; the freshly
	// submitted credentials are trusted without a second login round trip.
	Register(ctx context.Context, name, email, password, confirmPassword string) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}

type userService struct {
	users    repository.UserRepository
	sessions *session.Manager
	now      func() time.Time
	newID    func() string
}

// UserOption overrides a userService collaborator, mainly for deterministic tests.
type UserOption func(*userService)

func WithUserClock(now func() time.Time) UserOption {
	return func(s *userService) { s.now = now }
}

func WithUserIDGenerator(gen func() string) UserOption {
	return func(s *userService) { s.newID = gen }
}

func NewUserService(users repository.UserRepository, sessions *session.Manager, opts ...UserOption) UserService {
	s := &userService{
		users:    users,
		sessions: sessions,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail lowercases and trims an email; the result is the uniqueness key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, name, email, password, confirmPassword string) (*domain.Session, error) {
	if err := validate.First(
		validate.Required("name", name, "Name is required"),
		validate.MinLength("name", strings.TrimSpace(name), 2, "Name must be at least 2 characters long"),
		validate.Email("email", email),
		validate.MinLength("password", password, 6, "Password must be at least 6 characters long"),
	); err != nil {
		return nil, err
	}
	if password != confirmPassword {
		return nil, domain.NewValidationError("confirmPassword", "Passwords do not match")
	}

	normalized := NormalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, normalized); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           s.newID(),
		Name:         strings.TrimSpace(name),
		Email:        normalized,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.startSession(ctx, user)
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if err := validate.First(
		validate.Email("email", email),
		validate.Required("password", password, "Password is required"),
	); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *userService) startSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	sess := domain.NewSession(s.newID(), user, s.now())
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *userService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *userService) CurrentSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if err := validate.First(
			validate.Required("name", name, "Name is required"),
			validate.MinLength("name", name, 2, "Name must be at least 2 characters long"),
		); err != nil {
			return nil, err
		}
		user.Name = name
	}
	if patch.Email != nil {
		if err := validate.Email("email", *patch.Email); err != nil {
			return nil, err
		}
		normalized := NormalizeEmail(*patch.Email)
		if normalized != user.Email {
			if existing, err := s.users.GetByEmail(ctx, normalized); err == nil && existing.ID != user.ID {
				return nil, domain.ErrDuplicateEmail
			} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			user.Email = normalized
		}
	}
	if patch.Password != nil {
		if err := validate.MinLength("password", *patch.Password, 6, "Password must be at least 6 characters long"); err != nil {
			return nil, err
		}
		hash, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	if err := s.sessions.RefreshUser(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clone := *user
	clone.PasswordHash = ""
	return &clone
}
