package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/cinema-booking-flow/internal/config"
	"github.com/iliyamo/cinema-booking-flow/internal/queue"
)

// The consumer appends every booking.confirmed event to BOOKING_LOG_PATH
// (logs/booking.log by default).
func main() {
	_ = godotenv.Load()
	config.SetupLogging(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))

	path := os.Getenv("BOOKING_LOG_PATH")
	if path == "" {
		path = "logs/booking.log"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("log_path", path).Msg("booking consumer starting")
	if err := queue.StartBookingConsumer(ctx, config.AMQPURL(), path); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("booking consumer stopped")
	}
}
