// Package auth registers operators and issues the signed tokens that carry their session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/domain/validation"
	"github.com/mamadbah2/stockledger/internal/repository"
)

var (
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Options configures token signing and password hashing.
type Options struct {
	Secret     []byte
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service authenticates users. Sessions live only in the signed token.
type Service struct {
	users     repository.UserRepository
	validator *validation.Validator
	opts      Options
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(users repository.UserRepository, validator *validation.Validator, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, validator: validator, opts: opts, now: time.Now, logger: logger}
}

// Register creates a user and signs them in. A taken username yields models.ErrDuplicate.
func (s *Service) Register(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	creds, err := s.validator.ValidateCredentials(creds)
	if err != nil {
		return models.AuthResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.opts.BcryptCost)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, models.User{Username: creds.Username, PasswordHash: string(hash)})
	if err != nil {
		return models.AuthResult{}, err
	}

	s.logger.Info("user registered", zap.String("username", user.Username))
	return s.issue(user)
}

// Login checks the password against the stored bcrypt hash.
func (s *Service) Login(ctx context.Context, creds models.Credentials) (models.AuthResult, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if creds.Username == "" || creds.Password == "" {
		return models.AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.AuthResult{}, ErrInvalidCredentials
		}
		return models.AuthResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		s.logger.Info("login rejected", zap.String("username", creds.Username))
		return models.AuthResult{}, ErrInvalidCredentials
	}

	return s.issue(user)
}

// ParseToken verifies signature, issuer and expiry and returns the session it carries.
func (s *Service) ParseToken(token string) (models.Session, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.opts.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return models.Session{
		UserID:    c.Subject,
		Username:  c.Username,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

func (s *Service) issue(user models.User) (models.AuthResult, error) {
	now := s.now()
	expires := now.Add(s.opts.TokenTTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	signed, err := token.SignedString(s.opts.Secret)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("sign token: %w", err)
	}

	return models.AuthResult{Token: signed, ExpiresAt: expires, User: user}, nil
}
