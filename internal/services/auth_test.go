package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/materials-catalog/internal/platform/ctxutil"
	"github.com/yungbote/materials-catalog/internal/platform/logger"
)

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService(logger.NewNop(), "s3cret", "catalog")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	uid := uuid.New()
	tok, err := svc.Issue(uid, "ADMIN", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	rd, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rd.UserID != uid || rd.Role != ctxutil.RoleAdmin {
		t.Fatalf("request data: %+v", rd)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc, _ := NewTokenService(logger.NewNop(), "s3cret", "")
	other, _ := NewTokenService(logger.NewNop(), "different", "")
	uid := uuid.New()

	foreign, _ := other.Issue(uid, "user", time.Minute)
	if _, err := svc.Verify(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign signature accepted: %v", err)
	}

	expiredClaims := TokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   uid.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("s3cret"))
	if _, err := svc.Verify(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token accepted: %v", err)
	}

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, expiredClaims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := svc.Verify(unsigned); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("unsigned token accepted: %v", err)
	}
	if _, err := svc.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("empty token accepted")
	}
}

func TestDefaultRoleIsUser(t *testing.T) {
	svc, _ := NewTokenService(logger.NewNop(), "s3cret", "")
	tok, _ := svc.Issue(uuid.New(), "", 0)
	rd, err := svc.Verify(tok)
	if err != nil || rd.Role != ctxutil.RoleUser || rd.IsAdmin() {
		t.Fatalf("role: %+v err=%v", rd, err)
	}
}
