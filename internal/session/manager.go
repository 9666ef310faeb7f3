package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid session token")

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues signed session tokens and resolves them against the Store. The token is
// only a signed pointer to the server-side record: revoking the record kills the token.
type Manager struct {
	Store  Store
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewManager(store Store, secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{Store: store, Secret: secret, TTL: ttl, Now: time.Now}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) ttl() time.Duration {
	if m.TTL <= 0 {
		return DefaultTTL
	}
	return m.TTL
}

// Issue creates a new session for the user and returns the signed token.
func (m *Manager) Issue(ctx context.Context, userID uint, role string) (string, *Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl()),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})
	signed, err := tok.SignedString(m.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}

	if err := m.Store.Set(ctx, s); err != nil {
		return "", nil, fmt.Errorf("store session: %w", err)
	}
	return signed, s, nil
}

func (m *Manager) parse(token string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return m.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	return &c, nil
}

// Resolve returns the live session behind a token.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	c, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	s, err := m.Store.Get(ctx, c.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: session revoked", ErrInvalidToken)
		}
		return nil, err
	}
	if s.Expired(m.now()) {
		_ = m.Store.Delete(ctx, s.ID)
		return nil, fmt.Errorf("%w: session expired", ErrInvalidToken)
	}
	return s, nil
}

// Revoke drops the session behind a token. Unknown or malformed tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	c, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.Store.Delete(ctx, c.ID)
}
