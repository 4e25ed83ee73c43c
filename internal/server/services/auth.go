// Package services contains server-side business logic. This file implements
// AuthService, which registers accounts, checks credentials and issues and
// validates bearer tokens.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("gophauth/services")

const (
	maxIdentifierLength = 255
	maxPasswordLength   = 1024
)

// PasswordHasher turns plaintext passwords into self-describing encoded
// hashes and checks candidates against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
	NeedsRehash(encoded string) bool
}

// TokenIssuer mints and validates bearer tokens carrying a subject.
type TokenIssuer interface {
	GenerateToken(subject string) (string, error)
	VerifyToken(token string) (string, error)
}

// AuthService provides the authentication operations:
//   - Register: validate, check uniqueness, hash and store a new user
//   - Login: check credentials and mint a token
//   - VerifyToken / Authenticate: validate a token and resolve its user
type AuthService struct {
	users     users.Repository
	hasher    PasswordHasher
	tokens    TokenIssuer
	log       logging.Logger
	dummyHash string
}

// NewAuthService wires the service. It hashes a random throwaway password so
// that logins for unknown usernames can spend the same verification work.
func NewAuthService(repo users.Repository, hasher PasswordHasher, tokens TokenIssuer, log logging.Logger) (*AuthService, error) {
	throwaway, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("generate dummy password: %w", err)
	}
	dummy, err := hasher.Hash(throwaway)
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}

	return &AuthService{
		users:     repo,
		hasher:    hasher,
		tokens:    tokens,
		log:       log.With("module", "auth"),
		dummyHash: dummy,
	}, nil
}

// Login verifies username and password and returns a signed token.
// An unknown username and a wrong password both yield
// common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (token string, err error) {
	ctx, span := tracer.Start(ctx, "auth.login")
	defer func() { endSpan(span, err) }()

	if len(password) > maxPasswordLength || len(username) > maxIdentifierLength {
		metrics.RecordLogin(metrics.ResultInvalid)
		return "", common.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.verify(password, s.dummyHash)
			metrics.RecordLogin(metrics.ResultInvalid)
			return "", common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		metrics.RecordLogin(metrics.ResultError)
		return "", common.ErrorInternal
	}

	if !s.verify(password, user.PasswordHash) {
		metrics.RecordLogin(metrics.ResultInvalid)
		return "", common.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user, password)
	}

	token, err = s.tokens.GenerateToken(user.Username)
	if err != nil {
		s.log.Error(ctx, "token generation failed", "error", err)
		metrics.RecordLogin(metrics.ResultError)
		return "", common.ErrorInternal
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	metrics.RecordLogin(metrics.ResultSuccess)
	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// Register creates a new account. Username conflicts are reported before
// email conflicts. The caller must log in separately to obtain a token.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (user *models.User, err error) {
	ctx, span := tracer.Start(ctx, "auth.register")
	defer func() { endSpan(span, err) }()

	if err := validateRegistration(username, email, password); err != nil {
		metrics.RecordRegister(metrics.ResultInvalid)
		return nil, err
	}

	if err := s.ensureFree(ctx, s.users.FindByUsername, username, common.ErrUsernameTaken); err != nil {
		return nil, err
	}
	if err := s.ensureFree(ctx, s.users.FindByEmail, email, common.ErrEmailTaken); err != nil {
		return nil, err
	}

	start := time.Now()
	hash, err := s.hasher.Hash(password)
	metrics.ObserveHash("hash", time.Since(start))
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "error", err)
		metrics.RecordRegister(metrics.ResultError)
		return nil, common.ErrorInternal
	}

	user, err = s.users.Save(ctx, &models.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrUsernameTaken) || errors.Is(err, common.ErrEmailTaken) {
			metrics.RecordRegister(metrics.ResultConflict)
			return nil, err
		}
		s.log.Error(ctx, "saving user failed", "error", err)
		metrics.RecordRegister(metrics.ResultError)
		return nil, common.ErrorInternal
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	metrics.RecordRegister(metrics.ResultSuccess)
	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// VerifyToken returns the subject of a valid token, or one of
// common.ErrInvalidSignature, common.ErrTokenExpired, common.ErrMalformedToken.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (subject string, err error) {
	_, span := tracer.Start(ctx, "auth.verify_token")
	defer func() { endSpan(span, err) }()

	subject, err = s.tokens.VerifyToken(token)
	if err != nil {
		metrics.RecordTokenVerification(metrics.ResultInvalid)
		return "", err
	}
	metrics.RecordTokenVerification(metrics.ResultSuccess)
	return subject, nil
}

// Authenticate resolves a token to its user. A valid token whose subject no
// longer exists yields common.ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, token string) (user *models.User, err error) {
	ctx, span := tracer.Start(ctx, "auth.authenticate")
	defer func() { endSpan(span, err) }()

	subject, err := s.VerifyToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err = s.users.FindByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

// --- helpers below ---

func (s *AuthService) verify(password, encoded string) bool {
	start := time.Now()
	ok := s.hasher.Verify(password, encoded)
	metrics.ObserveHash("verify", time.Since(start))
	return ok
}

// rehash upgrades a stored hash to the current algorithm and parameters.
// Failures are logged and otherwise ignored.
func (s *AuthService) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn(ctx, "rehash failed", "user_id", user.ID, "error", err)
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		s.log.Warn(ctx, "storing rehashed password failed", "user_id", user.ID, "error", err)
		return
	}
	s.log.Debug(ctx, "password rehashed", "user_id", user.ID)
}

func (s *AuthService) ensureFree(ctx context.Context, find func(context.Context, string) (*models.User, error), value string, conflict error) error {
	_, err := find(ctx, value)
	switch {
	case err == nil:
		metrics.RecordRegister(metrics.ResultConflict)
		return conflict
	case errors.Is(err, common.ErrorNotFound):
		return nil
	default:
		s.log.Error(ctx, "uniqueness check failed", "error", err)
		metrics.RecordRegister(metrics.ResultError)
		return common.ErrorInternal
	}
}

func validateRegistration(username, email, password string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", common.ErrInvalidInput)
	case len(username) > maxIdentifierLength:
		return fmt.Errorf("%w: username is too long", common.ErrInvalidInput)
	case strings.TrimSpace(email) == "":
		return fmt.Errorf("%w: email is required", common.ErrInvalidInput)
	case len(email) > maxIdentifierLength:
		return fmt.Errorf("%w: email is too long", common.ErrInvalidInput)
	case !looksLikeEmail(email):
		return fmt.Errorf("%w: email is not valid", common.ErrInvalidInput)
	case password == "":
		return fmt.Errorf("%w: password is required", common.ErrInvalidInput)
	case len(password) > maxPasswordLength:
		return fmt.Errorf("%w: password is too long", common.ErrInvalidInput)
	}
	return nil
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
