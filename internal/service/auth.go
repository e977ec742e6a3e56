// Package service holds the business logic, between the HTTP handlers and the
// repository/auth primitives:
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) + PasswordService (bcrypt)
//
// Services know nothing about HTTP: no status codes, no request types beyond
// their own input structs. Handlers translate the errors raised here using the
// apperror taxonomy.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/sakif/accounts-api/internal/apperror"
	"github.com/sakif/accounts-api/internal/auth"
	"github.com/sakif/accounts-api/internal/model"
	"github.com/sakif/accounts-api/internal/repository"
)

// storeTimeout bounds every repository call made from a service. A hung store
// surfaces as a retryable 503 instead of a goroutine parked forever.
const storeTimeout = 5 * time.Second

// RegisterInput is the registration payload.
// IsGraduate is optional — absent means false.
type RegisterInput struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	City       string `json:"city"`
	Country    string `json:"country"`
	IsGraduate bool   `json:"isGraduate"`
}

// Validate checks the registration payload before any side effect.
//
// The rules mirror the registration schema: 3–30 character strings for
// fullName/password/city/country, and an email that is both syntactically
// valid and has at least two domain segments ("a@x" is rejected, "a@x.com"
// is accepted). Lengths count runes, not bytes, so a multibyte name is
// measured in characters. ozzo-validation collects ALL failing fields into
// one error, so the client sees every problem in a single response.
func (r RegisterInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Required, validation.RuneLength(3, 30)),
		validation.Field(&r.Email, validation.Required, is.Email, validation.By(hasTwoDomainSegments)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(3, 30)),
		validation.Field(&r.City, validation.Required, validation.RuneLength(3, 30)),
		validation.Field(&r.Country, validation.Required, validation.RuneLength(3, 30)),
	)
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email, validation.By(hasTwoDomainSegments)),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(3, 30)),
	)
}

// hasTwoDomainSegments rejects addresses whose domain has fewer than two
// dot-separated parts. is.Email alone accepts "user@localhost"; the
// registration contract requires a real-looking domain.
func hasTwoDomainSegments(value interface{}) error {
	s, _ := value.(string)
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return nil // is.Email already rejects this; don't double-report
	}
	domain := s[at+1:]
	parts := strings.Split(domain, ".")
	if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
		return errors.New("must have a valid domain")
	}
	return nil
}

// AuthService handles registration, login, and token-subject resolution.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Called from server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// build the response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account.
//
// FLOW: validate → duplicate pre-check → hash → insert → issue token.
//
// The pre-check gives a clean error message in the common case, but it is
// advisory only — two concurrent registrations can both pass it. The email
// UNIQUE index in the store is what actually guarantees uniqueness, and its
// violation comes back through Create as the same ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	_, err := s.users.GetByEmail(storeCtx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.DuplicateEmail()
	case errors.Is(err, apperror.ErrNotFound):
		// fresh email — proceed
	default:
		return nil, fmt.Errorf("service/auth: checking email: %w", mapStoreErr(err))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		City:         in.City,
		Country:      in.Country,
		IsGraduate:   in.IsGraduate,
	}

	if err := s.users.Create(storeCtx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user: %w", mapStoreErr(err))
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login authenticates an existing account.
//
// An unknown email and a wrong password produce the IDENTICAL error — the
// response must not reveal whether the address is registered. The bcrypt
// comparison also rejects OAuth-only accounts (empty hash) the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.GetByEmail(storeCtx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: fetching user by email: %w", mapStoreErr(err))
	}

	if !s.passwords.Verify(user.PasswordHash, in.Password) {
		s.logger.Info("failed login attempt", slog.String("userID", user.ID))
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGitHub handles the OAuth callback: upserts the GitHub
// identity into the store and issues the same session token a password login
// would. First login creates the account; later logins refresh name/email in
// case they changed on GitHub.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	ghID := ghUser.ID
	user := &model.User{
		FullName: ghUser.FullName(),
		Email:    ghUser.Email,
		GitHubID: &ghID,
	}

	if err := s.users.UpsertGitHub(storeCtx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghID, mapStoreErr(err))
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.Int64("githubID", ghID),
	)

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID resolves a token subject to the current account record.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.GetByID(storeCtx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, mapStoreErr(err))
	}

	return user, nil
}

// mapStoreErr converts a timed-out or cancelled store call into the retryable
// Unavailable kind; everything else passes through unchanged.
func mapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", apperror.Unavailable(), err)
	}
	return err
}
