// services/auth_service.go
package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"bonus-listing-system/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AdminCookie holds the signed admin session token.
const AdminCookie = "admin_token"

const adminSubject = "admin"

var ErrInvalidToken = errors.New("invalid admin token")

// AuthService exchanges the shared admin code for a signed session cookie.
type AuthService struct {
	code         string
	secret       []byte
	ttl          time.Duration
	cookieSecure bool
	now          func() time.Time
}

func NewAuthService(code string, secret []byte, ttl time.Duration, cookieSecure bool) *AuthService {
	return &AuthService{
		code:         code,
		secret:       secret,
		ttl:          ttl,
		cookieSecure: cookieSecure,
		now:          time.Now,
	}
}

// IssueToken signs an HS256 admin token valid for the configured TTL.
func (s *AuthService) IssueToken() (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// VerifyToken checks signature, algorithm, expiry and subject.
func (s *AuthService) VerifyToken(raw string) error {
	if raw == "" {
		return ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}

// IsAdmin reports whether the request carries a valid admin cookie.
func (s *AuthService) IsAdmin(c *fiber.Ctx) bool {
	return s.VerifyToken(c.Cookies(AdminCookie)) == nil
}

func (s *AuthService) codeMatches(code string) bool {
	return s.code != "" && subtle.ConstantTimeCompare([]byte(code), []byte(s.code)) == 1
}

// ===== HTTP =====

type loginRequest struct {
	Code string `json:"code"`
}

func (s *AuthService) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Admin code is required"})
	}
	if !s.codeMatches(req.Code) {
		logging.Ctx(c.UserContext()).Warn().Str("ip", c.IP()).Msg("🚫 rejected admin login")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid admin code"})
	}

	token, expires, err := s.IssueToken()
	if err != nil {
		return respondError(c, err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     AdminCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	logging.Ctx(c.UserContext()).Info().Str("ip", c.IP()).Msg("🔑 admin logged in")
	return c.JSON(fiber.Map{"success": true})
}

func (s *AuthService) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     AdminCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"success": true})
}

// Session reports whether the caller is logged in.
func (s *AuthService) Session(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"authenticated": s.IsAdmin(c)})
}
