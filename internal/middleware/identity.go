package middleware

// identity.go defines helpers shared across middleware files and handlers
// for reading the booking session resolved by Session.

import "github.com/labstack/echo/v4"

const sessionKey = "session_id"

// SessionID returns the booking session id stored by Session, or "" when
// the request did not pass through it.
func SessionID(c echo.Context) string {
    if v, ok := c.Get(sessionKey).(string); ok {
        return v
    }
    return ""
}

// rateSubject identifies the caller for rate limiting.  Requests without a
// session are grouped under "anon".
func rateSubject(c echo.Context) string {
    if id := SessionID(c); id != "" {
        return id
    }
    return "anon"
}
