package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
)

type tokenKind string

const (
	tokenAccess  tokenKind = "access"
	tokenRefresh tokenKind = "refresh"
)

// tokenClaims is the signed payload. The clinician id travels in Subject.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role Role      `json:"role"`
	Kind tokenKind `json:"kind"`
}

// tokenIssuer signs and verifies HS256 tokens for one secret and issuer.
type tokenIssuer struct {
	secret []byte
	issuer string
	ttl    map[tokenKind]time.Duration
	now    func() time.Time
}

func newTokenIssuer(cfg Config, now func() time.Time) *tokenIssuer {
	return &tokenIssuer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl: map[tokenKind]time.Duration{
			tokenAccess:  cfg.TokenTTL,
			tokenRefresh: cfg.RefreshTokenTTL,
		},
		now: now,
	}
}

func (t *tokenIssuer) issue(clinician Clinician, kind tokenKind) (string, error) {
	now := t.now()
	claims := tokenClaims{
		Role: clinician.Role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(clinician.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl[kind])),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeAuth, "failed to sign token", err)
	}
	return signed, nil
}

// parse verifies raw and requires it to be a kind token for a known role.
func (t *tokenIssuer) parse(raw string, kind tokenKind) (Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token validation failed", err)
	}
	if claims.Kind != kind {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token type mismatch", nil)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, fmt.Sprintf("invalid subject %q", claims.Subject), err)
	}
	if _, err := ParseRole(string(claims.Role)); err != nil || claims.Role == "" {
		return Claims{}, apperrors.Wrap(apperrors.CodeInvalidToken, "token carries no known role", err)
	}
	return Claims{
		ClinicianID: id,
		Role:        claims.Role,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
