package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// RequestLogger logs one structured line per request with the global
// zerolog logger.  Server errors log at error level, client errors at warn.
func RequestLogger() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            status := c.Response().Status
            var ev *zerolog.Event
            switch {
            case status >= 500:
                ev = log.Error().Err(err)
            case status >= 400:
                ev = log.Warn()
            default:
                ev = log.Info()
            }
            ev.Str("method", c.Request().Method).
                Str("path", c.Path()).
                Str("uri", c.Request().RequestURI).
                Int("status", status).
                Int64("bytes", c.Response().Size).
                Dur("latency", time.Since(start)).
                Str("ip", c.RealIP()).
                Str("session", SessionID(c)).
                Msg("request")
            return nil
        }
    }
}
