package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinematch/cinematch/internal/session"
)

const sessionContextKey = "session"

// SessionLoader resolves a cookie value to a session state.
type SessionLoader interface {
	Load(ctx context.Context, id string) (*session.State, error)
}

// SessionConfig configures the session cookie.
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
}

// Session attaches the caller's view state to the request context and
// (re)issues the HTTP-only session cookie.
func Session(loader SessionLoader, cfg SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				id = cookie.Value
			}

			state, err := loader.Load(c.Request().Context(), id)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to load session").SetInternal(err)
			}

			c.SetCookie(&http.Cookie{
				Name:     cfg.CookieName,
				Value:    state.ID,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   c.Scheme() == "https",
			})
			c.Set(sessionContextKey, state)

			return next(c)
		}
	}
}

// SessionFrom returns the state attached by Session, or nil outside it.
func SessionFrom(c echo.Context) *session.State {
	state, _ := c.Get(sessionContextKey).(*session.State)
	return state
}
