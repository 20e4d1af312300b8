// AngelaMos | 2026
// jwt.go

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/edition-console/internal/config"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
)

const cookieTokenType = "session"

// CookieSigner seals session ids into HS256 JWTs for the session cookie.
type CookieSigner struct {
	key    jwk.Key
	issuer string
}

func NewCookieSigner(cfg config.SessionConfig) (*CookieSigner, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	key, err := jwk.Import([]byte(cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("import session secret: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &CookieSigner{
		key:    key,
		issuer: cfg.Issuer,
	}, nil
}

func (s *CookieSigner) Sign(sid string, ttl time.Duration) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(s.issuer).
		Subject(sid).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		NotBefore(now).
		Claim("type", cookieTokenType).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// Verify returns the session id sealed in value.
func (s *CookieSigner) Verify(value string) (string, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256(), s.key),
		jwt.WithValidate(true),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.Parse([]byte(value), opts...)
	if err != nil {
		if isTokenExpiredError(err) {
			return "", fmt.Errorf("verify cookie: %w", core.ErrTokenExpired)
		}
		return "", fmt.Errorf("verify cookie: %w", core.ErrTokenInvalid)
	}

	var tokenType string
	if err := token.Get("type", &tokenType); err != nil || tokenType != cookieTokenType {
		return "", fmt.Errorf("verify cookie: invalid token type: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return "", fmt.Errorf("verify cookie: missing subject: %w", core.ErrTokenInvalid)
	}

	return subject, nil
}

func isTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "exp") &&
		strings.Contains(errStr, "not satisfied")
}
