package security

import (
	"errors"
	"strconv"
	"time"

	"promo-restaurant-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, expiry or a malformed payload.
var ErrInvalidToken = errors.New("invalid or expired token")

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Principal is the authenticated identity carried by a token.
type Principal struct {
	UserID uint
	Role   models.UserRole
}

// Claims is the signed token payload: sub, role and the registered time claims.
type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
}

// TokenManager signs and verifies access and refresh tokens. Each kind has its
// own secret so one can never be accepted as the other.
type TokenManager struct {
	secrets map[TokenKind][]byte
	ttls    map[TokenKind]time.Duration
	now     func() time.Time
}

func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{
		secrets: map[TokenKind][]byte{
			KindAccess:  cfg.AccessSecret,
			KindRefresh: cfg.RefreshSecret,
		},
		ttls: map[TokenKind]time.Duration{
			KindAccess:  AccessTokenTTL,
			KindRefresh: RefreshTokenTTL,
		},
		now: time.Now,
	}
}

// WithClock returns a copy of m that reads time from now. Used by tests.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *TokenManager) TTL(kind TokenKind) time.Duration {
	return m.ttls[kind]
}

// Sign issues a token of the given kind for p.
func (m *TokenManager) Sign(p Principal, kind TokenKind) (string, error) {
	secret, ok := m.secrets[kind]
	if !ok {
		return "", errors.New("unknown token kind " + string(kind))
	}
	now := m.now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(p.UserID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttls[kind])),
			// jti keeps two tokens minted in the same second distinct
			ID: uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// IssuePair signs a fresh access + refresh pair for p.
func (m *TokenManager) IssuePair(p Principal) (TokenPair, error) {
	access, err := m.Sign(p, KindAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.Sign(p, KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Verify checks signature and expiry and returns the token's principal.
func (m *TokenManager) Verify(token string, kind TokenKind) (Principal, error) {
	secret, ok := m.secrets[kind]
	if !ok || token == "" {
		return Principal{}, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 || !claims.Role.Valid() {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: uint(id), Role: claims.Role}, nil
}
