package client

import (
	"context"
	"errors"

	"studyzone_backend/internal/auth"
	"studyzone_backend/internal/logger"
	"studyzone_backend/internal/models"
	"studyzone_backend/internal/services/dto"
)

// Decision is the outcome of a guard check. Redirect is set only when Allow is false.
type Decision struct {
	Allow    bool
	Redirect string
}

// SessionValidator is the server round-trip the guard depends on.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*dto.SessionResponse, error)
}

// Guard gates role-restricted views on the client. It never trusts the cached
// identity alone: a view opens only after the server confirms the token.
type Guard struct {
	cache *Cache
	api   SessionValidator
}

func NewGuard(cache *Cache, api SessionValidator) *Guard {
	return &Guard{cache: cache, api: api}
}

func (g *Guard) Check(ctx context.Context, allowedRoles ...models.Role) Decision {
	session, err := g.cache.Load()
	if err != nil {
		logger.Warn("Unreadable session cache, starting over", "error", err)
		g.clear()
		return Decision{Redirect: auth.EntryPoint}
	}
	if session.Token == "" || session.User == nil {
		return Decision{Redirect: auth.EntryPoint}
	}

	cached := models.NormalizeRoles(session.User.Roles)
	if len(allowedRoles) > 0 && !models.HasAnyRole(cached, allowedRoles...) {
		// wrong area, not a bad session
		return Decision{Redirect: auth.LandingView(cached)}
	}

	resp, err := g.api.Validate(ctx, session.Token)
	if err != nil || resp == nil || !resp.Valid {
		if errors.Is(err, ErrUnavailable) {
			logger.Warn("Session could not be validated", "error", err)
		}
		g.clear()
		return Decision{Redirect: auth.EntryPoint}
	}

	// the server view of the user wins over the cached one
	user := resp.User
	session.User = &user
	if err := g.cache.Save(session); err != nil {
		logger.Warn("Failed to refresh session cache", "error", err)
	}
	return Decision{Allow: true}
}

func (g *Guard) clear() {
	if err := g.cache.Clear(); err != nil {
		logger.Warn("Failed to clear session cache", "error", err)
	}
}
