// Package auth is the shop's mock login. Users live in the slot next to the
// cart; nothing here talks to a server.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Makepad-fr/bookshop/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	// AdminUser is the account allowed to add books.
	AdminUser = "Admin"

	adminPassword = "123456789"

	// EnvUser names the current user without a stored session.
	EnvUser = "BOOKSHOP_USER"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
	ErrEmptyField         = errors.New("username and password are required")
	ErrUnknownUser        = errors.New("unknown user")
)

type user struct {
	Username string `json:"username"`
	Hash     []byte `json:"hash"`
}

// Session is the logged-in user.
type Session struct {
	Username string
	Admin    bool
	Source   string // "env" | "slot"
}

// Options tune the service. Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
type Options struct {
	Cost   int
	Logger *slog.Logger
}

// Service registers users, checks passwords and remembers who is logged in.
type Service struct {
	slot   store.Slot
	cost   int
	logger *slog.Logger
}

func NewService(slot store.Slot, opts Options) *Service {
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{slot: slot, cost: opts.Cost, logger: opts.Logger}
}

// users returns the registry, seeding the admin account when the slot is empty or unreadable.
func (s *Service) users(ctx context.Context) ([]user, error) {
	data, err := s.slot.Get(ctx, store.KeyUsers)
	if err == nil {
		var us []user
		if jerr := json.Unmarshal(data, &us); jerr == nil && len(us) > 0 {
			return us, nil
		} else if jerr != nil {
			s.logger.Warn("discarding saved users", slog.String("error", jerr.Error()))
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("read users: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	return []user{{Username: AdminUser, Hash: hash}}, nil
}

func (s *Service) saveUsers(ctx context.Context, us []user) error {
	b, err := json.Marshal(us)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := s.slot.Set(ctx, store.KeyUsers, b); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	return nil
}

func find(us []user, name string) (user, bool) {
	for _, u := range us {
		if u.Username == name {
			return u, true
		}
	}
	return user{}, false
}

// Register adds a user. It does not log them in.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrEmptyField
	}
	us, err := s.users(ctx)
	if err != nil {
		return err
	}
	if _, ok := find(us, username); ok {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if err := s.saveUsers(ctx, append(us, user{Username: username, Hash: hash})); err != nil {
		return err
	}
	s.logger.Info("user registered", slog.String("user", username))
	return nil
}

// Login checks the password and stores the session.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrEmptyField
	}
	us, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	u, ok := find(us, username)
	if !ok || bcrypt.CompareHashAndPassword(u.Hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	b, err := json.Marshal(u.Username)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	if err := s.slot.Set(ctx, store.KeyCurrentUser, b); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return newSession(u.Username, "slot"), nil
}

// Current returns the logged-in user, or nil. The env override wins over the
// stored session but must still name a registered user.
func (s *Service) Current(ctx context.Context) (*Session, error) {
	if name := strings.TrimSpace(os.Getenv(EnvUser)); name != "" {
		us, err := s.users(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := find(us, name); !ok {
			return nil, fmt.Errorf("%w: %s (from %s)", ErrUnknownUser, name, EnvUser)
		}
		return newSession(name, "env"), nil
	}

	data, err := s.slot.Get(ctx, store.KeyCurrentUser)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil || strings.TrimSpace(name) == "" {
		s.logger.Warn("discarding saved session")
		return nil, nil
	}
	return newSession(name, "slot"), nil
}

// Logout forgets the stored session.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.slot.Delete(ctx, store.KeyCurrentUser); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func newSession(name, source string) *Session {
	return &Session{Username: name, Admin: name == AdminUser, Source: source}
}
