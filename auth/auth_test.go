package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/andrewpaige1/cardbox-api/models"
)

func newTestSessions(t *testing.T) *Sessions {
	t.Helper()
	s, err := NewSessions(Options{
		Secret:   "test-secret",
		Issuer:   "issuer",
		Audience: "audience",
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("NewSessions failed: %v", err)
	}
	return s
}

func TestNewSessionsRequiresSecret(t *testing.T) {
	if _, err := NewSessions(Options{}); err == nil {
		t.Error("Expected error for empty secret")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	s := newTestSessions(t)
	ident := models.Identity{UserID: "u-123", Username: "alice"}

	token, err := s.CreateToken(ident)
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}

	claims, err := s.VerifyToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if got := IdentityFromClaims(claims); got != ident {
		t.Errorf("Expected identity %+v, got %+v", ident, got)
	}
}

func TestVerifyTokenRejects(t *testing.T) {
	s := newTestSessions(t)
	now := time.Now()

	sign := func(secret string, claims Claims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("Failed to sign token: %v", err)
		}
		return token
	}
	valid := func() Claims {
		return Claims{
			Username: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "issuer",
				Subject:   "u-123",
				Audience:  jwt.ClaimStrings{"audience"},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := valid()
	wrongAudience.Audience = jwt.ClaimStrings{"elsewhere"}
	noSubject := valid()
	noSubject.Subject = ""
	noUsername := valid()
	noUsername.Username = ""

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign("other-secret", valid())},
		{"expired", sign("test-secret", expired)},
		{"wrong issuer", sign("test-secret", wrongIssuer)},
		{"wrong audience", sign("test-secret", wrongAudience)},
		{"no subject", sign("test-secret", noSubject)},
		{"no username", sign("test-secret", noUsername)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.VerifyToken(context.Background(), tt.token); err == nil {
				t.Error("Expected token to be rejected")
			}
		})
	}
}

func TestCookies(t *testing.T) {
	s := newTestSessions(t)

	w := httptest.NewRecorder()
	s.SetCookie(w, "token-value")
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("Expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != DefaultCookieName || c.Value != "token-value" || !c.HttpOnly {
		t.Errorf("Unexpected cookie %+v", c)
	}
	if c.MaxAge != int(time.Hour.Seconds()) {
		t.Errorf("Expected MaxAge %d, got %d", int(time.Hour.Seconds()), c.MaxAge)
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Errorf("Expected SameSite strict, got %v", c.SameSite)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(c)
	if got := s.TokenFromRequest(req); got != "token-value" {
		t.Errorf("Expected token from cookie, got %q", got)
	}
	if got := s.TokenFromRequest(httptest.NewRequest("GET", "/", nil)); got != "" {
		t.Errorf("Expected empty token without cookie, got %q", got)
	}

	w = httptest.NewRecorder()
	s.ClearCookie(w)
	cleared := w.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Errorf("Expected an expiring cookie, got %+v", cleared)
	}
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("Expected password to be hashed")
	}

	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("Expected password to match, got %v", err)
	}
	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Expected ErrPasswordMismatch, got %v", err)
	}
	if err := CheckPassword("not-a-hash", "x"); err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Expected a malformed hash error, got %v", err)
	}
}
