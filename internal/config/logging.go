package config

import (
    "os"
    "time"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

// SetupLogging configures the global zerolog logger.  Empty or unknown
// levels fall back to info.  Outside prod the output is the human-readable console
// writer; in prod it stays JSON.
func SetupLogging(level, env string) {
    lvl, err := zerolog.ParseLevel(level)
    if err != nil || level == "" {
        lvl = zerolog.InfoLevel
    }
    zerolog.SetGlobalLevel(lvl)
    zerolog.TimeFieldFormat = time.RFC3339
    if env != "prod" {
        log.Logger = log.Output(zerolog.ConsoleWriter{
            Out:        os.Stderr,
            TimeFormat: time.RFC3339,
        })
    }
}
