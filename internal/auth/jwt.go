package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// TokenKind distinguishes the two token families the service issues.
//
// Access tokens are short-lived and prove identity on a single request.
// Refresh tokens are long-lived, persisted per user, and exchanged for a
// fresh pair. Each kind is signed with its own secret, so a refresh token
// can never pass verification as an access token (or vice versa) even if a
// client sends it to the wrong endpoint.
type TokenKind int

const (
	AccessToken TokenKind = iota
	RefreshToken
)

func (k TokenKind) String() string {
	if k == RefreshToken {
		return "refresh"
	}
	return "access"
}

const issuer = "video-stack"

// ErrTokenInvalid covers every verification failure: bad signature, wrong
// secret (wrong kind), expired, malformed, missing subject. Callers that
// need to respond 401 only need errors.Is against this one value.
var ErrTokenInvalid = errors.New("auth: invalid token")

// TokenService issues and verifies the access/refresh token pair.
//
// It is stateless: verifying a token needs no database access. Persisting
// the refresh token on the user record is deliberately the session
// workflow's job, because that write has to happen atomically with the rest
// of the login/refresh semantics.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService creates a TokenService with distinct secrets and
// lifetimes per token kind. Secrets shorter than 16 bytes are rejected.
func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(accessSecret) < 16 || len(refreshSecret) < 16 {
		return nil, errors.New("auth: token secrets must be at least 16 characters")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// IssueAccess signs a short-lived access token for userID.
func (s *TokenService) IssueAccess(userID string) (string, error) {
	return s.issue(userID, s.accessSecret, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for userID.
//
// The caller is responsible for persisting the returned value on the user
// record; an unpersisted refresh token will fail the rotation check on its
// first use.
func (s *TokenService) IssueRefresh(userID string) (string, error) {
	return s.issue(userID, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
			// Timestamps have second precision, so two tokens issued in the
			// same second would otherwise be byte-identical — rotation by
			// overwrite needs every issued token to be distinct.
			ID: xid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenStr as a token of the given kind and returns the user
// ID from its subject claim.
//
// Checks performed: HS256 signature against the kind's secret, expiry
// (required), and issuer. Any failure is reported as ErrTokenInvalid — the
// caller does not learn whether the token was expired or forged, and
// neither does the client.
func (s *TokenService) Verify(tokenStr string, kind TokenKind) (string, error) {
	secret := s.accessSecret
	if kind == RefreshToken {
		secret = s.refreshSecret
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w (%s): %w", ErrTokenInvalid, kind, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", fmt.Errorf("%w (%s): missing subject", ErrTokenInvalid, kind)
	}
	return c.Subject, nil
}
