package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/repositories"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// Service is the account collaborator. All methods are safe for concurrent
// use.
type Service struct {
	users *repositories.UserRepository

	mu        sync.Mutex
	current   *models.User
	observers []chan *models.User
}

// NewService creates a Service backed by users, restoring any persisted
// session so the previously signed-in user is current immediately.
func NewService(users *repositories.UserRepository) (*Service, error) {
	current, err := users.ActiveSessionUser()
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	return &Service{users: users, current: current}, nil
}

// SignUp registers a new account and signs it in.
//
// Fails with [shared.ErrEmailTaken] when the email is already registered and
// [shared.ErrValidation] for blank email or password.
func (s *Service) SignUp(email, password, displayName string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrValidation)
	}

	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(0, email, displayName, string(hash))
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	if err := s.startSession(user); err != nil {
		return nil, err
	}

	return user, nil
}

// SignIn authenticates an existing account and makes it current.
//
// Unknown emails and wrong passwords both fail with [shared.ErrAuthFailed].
func (s *Service) SignIn(email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(strings.TrimSpace(email))
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrAuthFailed
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return nil, shared.ErrAuthFailed
	}

	if err := s.startSession(user); err != nil {
		return nil, err
	}

	return user, nil
}

// SignOut clears the persisted session and the current user.
func (s *Service) SignOut() error {
	if err := s.users.ClearSessions(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.mu.Lock()
	s.current = nil
	s.notifyLocked()
	s.mu.Unlock()

	return nil
}

// Current returns the signed-in user, or nil when signed out.
func (s *Service) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Observe subscribes to auth changes. The returned channel receives the
// current user right away, then the new value after every sign-in or
// sign-out. Slow subscribers miss intermediate values rather than blocking
// auth operations.
func (s *Service) Observe() <-chan *models.User {
	ch := make(chan *models.User, 4)

	s.mu.Lock()
	s.observers = append(s.observers, ch)
	ch <- s.current
	s.mu.Unlock()

	return ch
}

func (s *Service) startSession(user *models.User) error {
	if _, err := s.users.SaveSession(user.ID()); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.current = user
	s.notifyLocked()
	s.mu.Unlock()

	return nil
}

func (s *Service) notifyLocked() {
	for _, ch := range s.observers {
		select {
		case ch <- s.current:
		default:
		}
	}
}
