package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims are the claims carried by catalog access tokens. The subject is the user id.
type TokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService verifies bearer tokens. Issue exists for the CLI and tests; end users get
// their tokens from the identity provider that shares the signing key.
type TokenService interface {
	Verify(tokenString string) (*ctxutil.RequestData, error)
	Issue(userID uuid.UUID, role string, ttl time.Duration) (string, error)
}

type tokenService struct {
	log    *logger.Logger
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenService(log *logger.Logger, secret, issuer string) (TokenService, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}
	return &tokenService{
		log:    log.With("service", "TokenService"),
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		now:    time.Now,
	}, nil
}

func (s *tokenService) Issue(userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("missing user id")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := s.now()
	claims := TokenClaims{
		Role: normalizeRole(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *tokenService) Verify(tokenString string) (*ctxutil.RequestData, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		s.log.Debug("token rejected", "error", err)
		return nil, errors.Join(ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, errors.Join(ErrInvalidToken, fmt.Errorf("bad subject"))
	}
	return &ctxutil.RequestData{UserID: userID, Role: normalizeRole(claims.Role)}, nil
}

func normalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), ctxutil.RoleAdmin) {
		return ctxutil.RoleAdmin
	}
	return ctxutil.RoleUser
}
