// Package session issues and resolves tenant identity tokens.
//
// A session is an HS256 JWT carrying the tenant ID and display name. It is
// valid until its fixed expiry or until Destroy revokes its token ID.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"managerh.io/managerh/internal/domain"
)

// DefaultLifetime is the fixed session expiry.
const DefaultLifetime = 24 * time.Hour

var (
	ErrSigningKeyMissing = errors.New("session signing key is not configured")
	ErrInvalidToken      = errors.New("session token is invalid")
	ErrRevoked           = errors.New("session has been destroyed")
)

// Claims is the signed session payload.
type Claims struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
	jwt.RegisteredClaims
}

// Config holds session signing configuration.
type Config struct {
	SigningKey []byte
	Issuer     string
	Lifetime   time.Duration
}

// Manager issues, resolves and destroys sessions.
type Manager struct {
	cfg     Config
	revoker Revoker
	now     func() time.Time
}

// NewManager creates a session manager. A nil revoker keeps revocations in memory.
func NewManager(cfg Config, revoker Revoker) (*Manager, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrSigningKeyMissing
	}
	if cfg.Lifetime <= 0 {
		cfg.Lifetime = DefaultLifetime
	}
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &Manager{
		cfg:     cfg,
		revoker: revoker,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue signs a new session for the tenant.
func (m *Manager) Issue(tenant *domain.Tenant) (string, domain.Identity, error) {
	now := m.now().Truncate(time.Second)
	tokenID, err := uuid.NewV7()
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("generate session id: %w", err)
	}

	id := domain.Identity{
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
		TokenID:    tokenID.String(),
		IssuedAt:   now,
		ExpiresAt:  now.Add(m.cfg.Lifetime),
	}
	claims := Claims{
		TenantID:   id.TenantID,
		TenantName: id.TenantName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   id.TenantID,
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        id.TokenID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.SigningKey)
	if err != nil {
		return "", domain.Identity{}, fmt.Errorf("sign session: %w", err)
	}
	return token, id, nil
}

// Resolve validates a token and returns the identity it carries.
// Any signature, issuer, expiry or revocation failure yields ErrInvalidToken
// or ErrRevoked; revoker failures are returned wrapped.
func (m *Manager) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(strings.TrimSpace(token), &Claims{}, func(*jwt.Token) (interface{}, error) {
		return m.cfg.SigningKey, nil
	}, opts...)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.ID == "" || claims.TenantID == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return domain.Identity{}, ErrRevoked
	}

	id := domain.Identity{
		TenantID:   claims.TenantID,
		TenantName: claims.TenantName,
		TokenID:    claims.ID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	return id, nil
}

// Destroy revokes the session until its natural expiry. Destroying twice is harmless.
func (m *Manager) Destroy(ctx context.Context, id domain.Identity) error {
	if id.TokenID == "" {
		return ErrInvalidToken
	}
	if err := m.revoker.Revoke(ctx, id.TokenID, id.TenantID, id.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Lifetime returns the configured session lifetime.
func (m *Manager) Lifetime() time.Duration { return m.cfg.Lifetime }
