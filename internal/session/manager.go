// AngelaMos | 2026
// manager.go

// Package session keeps the signed-in user, their backend token and pending
// notifications in a server-side store addressed by a signed cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/carterperez-dev/templates/edition-console/internal/config"
	"github.com/carterperez-dev/templates/edition-console/internal/core"
	"github.com/carterperez-dev/templates/edition-console/internal/middleware"
	"github.com/carterperez-dev/templates/edition-console/internal/user"
	"github.com/carterperez-dev/templates/edition-console/internal/view"
)

const maxFlashes = 10

// Signer seals a session id into the cookie value and opens it again.
type Signer interface {
	Sign(sid string, ttl time.Duration) (string, error)
	Verify(value string) (string, error)
}

type Manager struct {
	store  Store
	signer Signer
	config config.SessionConfig
}

func NewManager(store Store, signer Signer, cfg config.SessionConfig) *Manager {
	return &Manager{
		store:  store,
		signer: signer,
		config: cfg,
	}
}

func (m *Manager) Store() Store {
	return m.store
}

// Login starts a fresh session holding the user and the backend token.
// Any session the request already carried is destroyed first.
func (m *Manager) Login(
	w http.ResponseWriter,
	r *http.Request,
	u user.User,
	token string,
) error {
	ctx := r.Context()

	if token == "" {
		return fmt.Errorf("session login: empty token: %w", core.ErrInvalidInput)
	}

	if old, ok := m.sessionID(r); ok {
		if err := m.store.Destroy(ctx, core.HashToken(old)); err != nil {
			slog.WarnContext(ctx, "destroy previous session", "error", err)
		}
	}

	blob, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session login: encode user: %w", err)
	}

	sid, err := core.GenerateSessionID()
	if err != nil {
		return fmt.Errorf("session login: %w", err)
	}

	err = m.store.Set(ctx, core.HashToken(sid), map[string]string{
		KeyUser:      string(blob),
		KeyAuthToken: token,
	}, m.config.TTL)
	if err != nil {
		return fmt.Errorf("session login: %w", err)
	}

	return m.writeCookie(w, sid)
}

// Logout removes both keys and clears the cookie. It is safe to call
// without a session.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)

	sid, ok := m.sessionID(r)
	if !ok {
		return nil
	}

	if err := m.store.Destroy(r.Context(), core.HashToken(sid)); err != nil {
		return fmt.Errorf("session logout: %w", err)
	}

	return nil
}

// Current returns the stored user and token. A session without a user is
// anonymous; a user blob that does not decode, or a user without a token,
// is deleted and treated as anonymous too.
func (m *Manager) Current(r *http.Request) (*user.User, string, error) {
	sid, ok := m.sessionID(r)
	if !ok {
		return nil, "", nil
	}

	ctx := r.Context()
	id := core.HashToken(sid)

	values, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("session current: %w", err)
	}

	raw, hasUser := values[KeyUser]
	if !hasUser {
		return nil, "", nil
	}

	var u user.User
	token := values[KeyAuthToken]
	if err := json.Unmarshal([]byte(raw), &u); err != nil || !u.Valid() || token == "" {
		m.discard(ctx, id)
		return nil, "", nil
	}

	u.Role = user.NormalizeRole(string(u.Role))

	return &u, token, nil
}

// Resolve adapts Current to the route gate.
func (m *Manager) Resolve(r *http.Request) (*middleware.Principal, error) {
	u, token, err := m.Current(r)
	if err != nil || u == nil {
		return nil, err
	}
	return u.Principal(token), nil
}

// AddFlash queues a notification for the next rendered page, starting an
// anonymous session when the request has none.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, f view.Flash) error {
	ctx := r.Context()

	sid, ok := m.sessionID(r)
	if !ok {
		var err error
		if sid, err = core.GenerateSessionID(); err != nil {
			return fmt.Errorf("add flash: %w", err)
		}
		if err := m.writeCookie(w, sid); err != nil {
			return err
		}
	}
	id := core.HashToken(sid)

	values, err := m.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("add flash: %w", err)
	}

	flashes := decodeFlashes(values[KeyFlash])
	flashes = append(flashes, f)
	if len(flashes) > maxFlashes {
		flashes = flashes[len(flashes)-maxFlashes:]
	}

	blob, err := json.Marshal(flashes)
	if err != nil {
		return fmt.Errorf("add flash: encode: %w", err)
	}

	if err := m.store.Set(ctx, id, map[string]string{KeyFlash: string(blob)}, m.config.TTL); err != nil {
		return fmt.Errorf("add flash: %w", err)
	}

	return nil
}

// Flash queues a notification and logs instead of failing the request.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	if err := m.AddFlash(w, r, view.Flash{Kind: kind, Message: message}); err != nil {
		slog.WarnContext(r.Context(), "queue notification failed", "error", err)
	}
}

// PopFlashes drains pending notifications. It matches view.FlashSource.
func (m *Manager) PopFlashes(_ http.ResponseWriter, r *http.Request) []view.Flash {
	sid, ok := m.sessionID(r)
	if !ok {
		return nil
	}

	ctx := r.Context()
	id := core.HashToken(sid)

	values, err := m.store.Get(ctx, id)
	if err != nil {
		slog.WarnContext(ctx, "read notifications failed", "error", err)
		return nil
	}

	raw, ok := values[KeyFlash]
	if !ok {
		return nil
	}

	if err := m.store.Delete(ctx, id, KeyFlash); err != nil {
		slog.WarnContext(ctx, "clear notifications failed", "error", err)
	}

	return decodeFlashes(raw)
}

// RunJanitor sweeps expired sessions until ctx is done. Stores that expire
// keys on their own are left alone.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	sweeper, ok := m.store.(Sweeper)
	if !ok || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.Sweep(ctx)
			if err != nil {
				slog.Warn("session sweep failed", "store", m.store.Kind(), "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("expired sessions removed", "store", m.store.Kind(), "count", n)
			}
		}
	}
}

func (m *Manager) discard(ctx context.Context, id string) {
	if err := m.store.Delete(ctx, id, KeyUser, KeyAuthToken); err != nil {
		slog.WarnContext(ctx, "discard malformed session", "error", err)
	}
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.config.CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	sid, err := m.signer.Verify(c.Value)
	if err != nil {
		if !errors.Is(err, core.ErrTokenExpired) {
			slog.DebugContext(r.Context(), "rejected session cookie", "error", err)
		}
		return "", false
	}

	return sid, true
}

func (m *Manager) writeCookie(w http.ResponseWriter, sid string) error {
	value, err := m.signer.Sign(sid, m.config.TTL)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeFlashes(raw string) []view.Flash {
	if raw == "" {
		return nil
	}

	var flashes []view.Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}
