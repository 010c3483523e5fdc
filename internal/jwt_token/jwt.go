package jwttoken

import (
	"errors"
	"strings"
	"time"

	dErrors "assistflow/pkg/domain-errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ApplicantClaims are the claims of an applicant bearer token.
type ApplicantClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService issues and validates applicant bearer tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	ttl        time.Duration
	now        func() time.Time
}

type Option func(*JWTService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

func NewJWTService(signingKey, issuer, audience string, ttl time.Duration, opts ...Option) *JWTService {
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueApplicantToken signs a token for email and returns it with its expiry.
func (s *JWTService) IssueApplicantToken(email string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ApplicantClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and verifies tokenString.
func (s *JWTService) ValidateToken(tokenString string) (*ApplicantClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ApplicantClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*ApplicantClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Email) == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateApplicantToken returns the email the token was issued for.
func (s *JWTService) ValidateApplicantToken(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}
