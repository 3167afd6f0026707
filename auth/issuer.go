package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAccessTTL is the access token lifetime when Config.AccessTTL is
// zero.
const DefaultAccessTTL = 15 * time.Second

// Token kinds carried in the "kind" claim.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// SecretStore resolves a signing key by key id.
type SecretStore interface {
	Lookup(keyID string) ([]byte, error)
}

// Config holds token issuance options.
type Config struct {
	// KeyID selects the key new tokens are signed with.
	KeyID string `validate:"required"`
	// AccessTTL defaults to DefaultAccessTTL.
	AccessTTL time.Duration
	// RefreshTTL of zero issues refresh tokens without expiry.
	RefreshTTL time.Duration `validate:"gte=0"`
	Issuer     string
}

// Claims are the JWT claims issued for a user.
type Claims struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens.
type Issuer struct {
	secrets SecretStore
	cfg     Config
	now     func() time.Time
}

// NewIssuer returns an Issuer signing with cfg.KeyID. The key must exist in
// secrets.
func NewIssuer(secrets SecretStore, cfg Config) (*Issuer, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("new issuer: %w", err)
	}

	if _, err := secrets.Lookup(cfg.KeyID); err != nil {
		return nil, fmt.Errorf("new issuer: %w", err)
	}

	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}

	return &Issuer{
		secrets: secrets,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

// WithClock returns a copy of i that reads the time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// Access issues a short-lived access token for name.
func (i *Issuer) Access(name string) (string, error) {
	return i.sign(name, KindAccess, i.cfg.AccessTTL)
}

// Refresh issues a refresh token for name.
func (i *Issuer) Refresh(name string) (string, error) {
	return i.sign(name, KindRefresh, i.cfg.RefreshTTL)
}

func (i *Issuer) sign(name, kind string, ttl time.Duration) (string, error) {
	secret, err := i.secrets.Lookup(i.cfg.KeyID)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}

	now := i.now()
	claims := Claims{
		Name: name,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  name,
			Issuer:   i.cfg.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = i.cfg.KeyID

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Verify checks the signature, expiry and kind of token and returns its
// claims. Every failure wraps ErrInvalidToken.
func (i *Issuer) Verify(token, kind string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("verify token: %w", ErrMissingToken)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, i.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w: %w", ErrInvalidToken, err)
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("verify token: %w: expected %s token, got %q", ErrInvalidToken, kind, claims.Kind)
	}

	return claims, nil
}

func (i *Issuer) keyFunc(t *jwt.Token) (any, error) {
	kid, ok := t.Header["kid"].(string)
	if !ok || kid == "" {
		return nil, errors.New("missing kid header")
	}
	return i.secrets.Lookup(kid)
}
