package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // cookie construction and status codes
    "time"

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers
    "github.com/rs/zerolog/log"   // structured logging for issued sessions

    "github.com/iliyamo/cinema-booking-flow/internal/utils"
)

// SessionCookie is the name of the cookie carrying the signed booking
// session token.
const SessionCookie = "booking_session"

// SessionConfig configures the Session middleware.
type SessionConfig struct {
    Secret string // HMAC secret used to sign and verify session tokens
    TTLMin int    // lifetime of newly issued sessions in minutes
    Secure bool   // mark the cookie Secure (set outside dev)
}

// Session returns an Echo middleware that resolves the caller's booking
// session.  A valid booking_session cookie keeps its session id; a missing,
// expired or tampered cookie is replaced by a freshly issued session.  The
// id is stored in the context under "session_id" and read back with
// SessionID.  A valid token with less than half of TTLMin left is re-signed
// for the same id.
func Session(cfg SessionConfig) echo.MiddlewareFunc {
    if cfg.TTLMin <= 0 {
        cfg.TTLMin = 120
    }
    ttl := time.Duration(cfg.TTLMin) * time.Minute
    setCookie := func(c echo.Context, tok utils.SessionToken) {
        c.SetCookie(&http.Cookie{
            Name:     SessionCookie,
            Value:    tok.Token,
            Path:     "/",
            Expires:  tok.Exp,
            HttpOnly: true,
            Secure:   cfg.Secure,
            SameSite: http.SameSiteLaxMode,
        })
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
                if cur, err := utils.ParseSession(cfg.Secret, ck.Value); err == nil {
                    // Re-sign once past half its lifetime.
                    if time.Until(cur.Exp) < ttl/2 {
                        if tok, err := utils.SignSession(cfg.Secret, cur.ID, cfg.TTLMin); err == nil {
                            setCookie(c, tok)
                        } else {
                            log.Warn().Err(err).Msg("refresh session token")
                        }
                    }
                    c.Set(sessionKey, cur.ID)
                    return next(c)
                }
            }
            tok, err := utils.NewSessionToken(cfg.Secret, cfg.TTLMin)
            if err != nil {
                log.Error().Err(err).Msg("issue session token")
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start session"})
            }
            setCookie(c, tok)
            c.Set(sessionKey, tok.ID)
            return next(c)
        }
    }
}
