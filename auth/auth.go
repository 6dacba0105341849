package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"

	"github.com/andrewpaige1/cardbox-api/models"
)

const DefaultCookieName = "bxcrd"

type Options struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration

	CookieName     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

// Claims is what we sign into the session token. Subject carries the user's
// public id.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// CustomClaims is the validator's view of the non-registered claims.
type CustomClaims struct {
	Username string `json:"username"`
}

func (c *CustomClaims) Validate(ctx context.Context) error {
	if c.Username == "" {
		return errors.New("username claim missing")
	}
	return nil
}

// Sessions issues and verifies the cookie tokens that carry a caller's identity.
type Sessions struct {
	opts      Options
	secret    []byte
	validator *validator.Validator
	extract   jwtmiddleware.TokenExtractor
}

func NewSessions(opts Options) (*Sessions, error) {
	if opts.Secret == "" {
		return nil, errors.New("auth: JWT secret key not set")
	}
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	if opts.CookieSameSite == 0 {
		opts.CookieSameSite = http.SameSiteStrictMode
	}

	secret := []byte(opts.Secret)
	v, err := validator.New(
		func(ctx context.Context) (interface{}, error) {
			return secret, nil
		},
		validator.HS256,
		opts.Issuer,
		[]string{opts.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to set up token validator: %w", err)
	}

	return &Sessions{
		opts:      opts,
		secret:    secret,
		validator: v,
		extract:   jwtmiddleware.CookieTokenExtractor(opts.CookieName),
	}, nil
}

func (s *Sessions) CookieName() string {
	return s.opts.CookieName
}

func (s *Sessions) CreateToken(ident models.Identity) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: ident.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.opts.Issuer,
			Subject:   ident.UserID,
			Audience:  jwt.ClaimStrings{s.opts.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TTL)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// VerifyToken checks signature, issuer, audience and expiry.
func (s *Sessions) VerifyToken(ctx context.Context, tokenString string) (*validator.ValidatedClaims, error) {
	raw, err := s.validator.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok || claims.RegisteredClaims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// TokenFromRequest returns the session token carried by the request cookie,
// or "" when there is none.
func (s *Sessions) TokenFromRequest(r *http.Request) string {
	token, err := s.extract(r)
	if err != nil {
		return ""
	}
	return token
}

// IdentityFromClaims converts validated claims back into an identity.
func IdentityFromClaims(claims *validator.ValidatedClaims) models.Identity {
	if claims == nil {
		return models.Identity{}
	}
	ident := models.Identity{UserID: claims.RegisteredClaims.Subject}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom != nil {
		ident.Username = custom.Username
	}
	return ident
}

func (s *Sessions) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   s.opts.CookieDomain,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: s.opts.CookieSameSite,
		MaxAge:   int(s.opts.TTL.Seconds()),
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		Domain:   s.opts.CookieDomain,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: s.opts.CookieSameSite,
		MaxAge:   -1,
	})
}
