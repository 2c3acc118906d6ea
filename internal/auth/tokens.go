package auth

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrTokenExpired is returned for a well formed token past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid covers every other parse or signature failure.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// Config holds the signing secrets and lifetimes. Access and refresh tokens
// are signed with different secrets so one can never stand in for the other.
type Config struct {
	AccessSecret  string        `koanf:"access_secret"`
	RefreshSecret string        `koanf:"refresh_secret"`
	AccessTTL     time.Duration `koanf:"access_ttl"`
	RefreshTTL    time.Duration `koanf:"refresh_ttl"`
}

// DefaultConfig returns the default lifetimes with empty secrets.
func DefaultConfig() Config {
	return Config{
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
	}
}

// Validate implements validation.Validatable.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AccessSecret, validation.Required),
		validation.Field(&c.RefreshSecret, validation.Required),
		validation.Field(&c.AccessTTL, validation.Required),
		validation.Field(&c.RefreshTTL, validation.Required),
	)
}

// Claims is the token payload.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller.
type Principal struct {
	UserID primitive.ObjectID
	Email  string
}

// Pair is an access token and its refresh token.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	access     []byte
	refresh    []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option customises Tokens.
type Option func(*Tokens)

// WithClock overrides the clock used to stamp and verify tokens.
func WithClock(now func() time.Time) Option {
	return func(t *Tokens) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTokens validates cfg and builds the issuer.
func NewTokens(cfg Config, opts ...Option) (*Tokens, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth config: %w", err)
	}

	t := &Tokens{
		access:     []byte(cfg.AccessSecret),
		refresh:    []byte(cfg.RefreshSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Issue signs a fresh access and refresh token for the user.
func (t *Tokens) Issue(userID primitive.ObjectID, email string) (Pair, error) {
	access, err := t.Access(userID, email)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := t.sign(t.refresh, t.refreshTTL, userID, email)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Access signs an access token only.
func (t *Tokens) Access(userID primitive.ObjectID, email string) (string, error) {
	return t.sign(t.access, t.accessTTL, userID, email)
}

// ParseAccess verifies an access token.
func (t *Tokens) ParseAccess(token string) (Principal, error) {
	return t.parse(t.access, token)
}

// ParseRefresh verifies a refresh token.
func (t *Tokens) ParseRefresh(token string) (Principal, error) {
	return t.parse(t.refresh, token)
}

func (t *Tokens) sign(secret []byte, ttl time.Duration, userID primitive.ObjectID, email string) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID: userID.Hex(),
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) parse(secret []byte, token string) (Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return Principal{}, ErrTokenInvalid
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: subject is not an object id", ErrTokenInvalid)
	}
	return Principal{UserID: id, Email: claims.Email}, nil
}
