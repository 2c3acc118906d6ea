package service

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-property-listing/internal/auth"
	"github.com/goliatone/go-property-listing/model"
)

// Session is what signup, login and refresh hand back to the client.
type Session struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken,omitempty"`
}

// Auth signs users up and in.
type Auth struct {
	users  UserDirectory
	tokens *auth.Tokens
	options
}

// NewAuth builds the account service.
func NewAuth(users UserDirectory, tokens *auth.Tokens, opts ...Option) *Auth {
	return &Auth{users: users, tokens: tokens, options: buildOptions(opts)}
}

// Signup creates an account and returns its first session.
func (s *Auth) Signup(ctx context.Context, in model.SignupInput) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, invalid(err, "Invalid signup request")
	}

	email := model.NormalizeEmail(in.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return Session{}, conflict("User already exists with this email")
	} else if !isNotFound(err) {
		return Session{}, s.fail(err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Session{}, internal(err, "Internal server error")
	}

	user, err := s.users.Create(ctx, model.User{
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  hash,
		CreatedAt: s.now(),
	})
	if err != nil {
		if isDuplicate(err) {
			return Session{}, conflict("User already exists with this email")
		}
		return Session{}, s.fail(err)
	}

	return s.session(user)
}

// Login checks the credentials and returns a new session.
func (s *Auth) Login(ctx context.Context, in model.LoginInput) (Session, error) {
	if err := in.Validate(); err != nil {
		return Session{}, invalid(err, "Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, model.NormalizeEmail(in.Email))
	if err != nil {
		if isNotFound(err) {
			return Session{}, unauthorized("Invalid credentials", TextCodeUnauthorized)
		}
		return Session{}, s.fail(err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return Session{}, unauthorized("Invalid credentials", TextCodeUnauthorized)
	}

	return s.session(user)
}

// Refresh exchanges a refresh token for a new access token.
func (s *Auth) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return Session{}, unauthorized("Refresh token not found", TextCodeUnauthorized)
	}

	principal, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return Session{}, unauthorized("Refresh token has expired. Please login again.", TextCodeTokenExpired)
		}
		return Session{}, forbiddenCode("Invalid refresh token", TextCodeTokenInvalid)
	}

	user, err := s.users.FindByEmail(ctx, principal.Email)
	if err != nil {
		if isNotFound(err) {
			return Session{}, forbidden("User not found")
		}
		return Session{}, s.fail(err)
	}

	access, err := s.tokens.Access(user.ID, user.Email)
	if err != nil {
		return Session{}, internal(err, "Server error during token refresh")
	}
	return Session{User: user, AccessToken: access}, nil
}

// Authenticate verifies an access token.
func (s *Auth) Authenticate(token string) (auth.Principal, error) {
	p, err := s.tokens.ParseAccess(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return auth.Principal{}, unauthorized("Access token has expired", "TOKEN_EXPIRED")
		}
		return auth.Principal{}, forbiddenCode("Invalid access token", "TOKEN_INVALID")
	}
	return p, nil
}

func (s *Auth) session(user model.User) (Session, error) {
	pair, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, internal(err, "Internal server error")
	}
	return Session{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

func (s *Auth) fail(err error) error {
	s.logger.Error().Err(err).Msg("user store failed")
	return internal(err, "Internal server error")
}
