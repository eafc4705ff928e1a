package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/fritkotgp/raceapi/internal/dependencies/clock"
	"github.com/fritkotgp/raceapi/internal/model"
	"github.com/fritkotgp/raceapi/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
)

// Session is the result of a successful login
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      model.User
}

// Service handles registration and login
type Service struct {
	storage  storage.Storage
	clock    clock.Clock
	verifier *Verifier
	logger   *slog.Logger

	bcryptCost int
}

// Config holds configuration for the auth service
type Config struct {
	Secret         string
	TokenExpiresIn time.Duration
	BcryptCost     int
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Secret:         "fritkot_secret",
		TokenExpiresIn: 7 * 24 * time.Hour,
		BcryptCost:     bcrypt.DefaultCost,
	}
}

// New creates a new auth Service
func New(storage storage.Storage, clock clock.Clock, verifier *Verifier, logger *slog.Logger, cfg Config) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultConfig().BcryptCost
	}
	return &Service{
		storage:    storage,
		clock:      clock,
		verifier:   verifier,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Verifier returns the token verifier used by this service
func (s *Service) Verifier() *Verifier {
	return s.verifier
}

// Register creates a user account
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = model.NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, model.ErrMissingField
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           model.UserID(model.NewID()),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues an access token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, model.ErrMissingField
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.verifier.Issue(user.Identity())
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	}, nil
}
