package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"                      // .env loading for local runs
	"github.com/labstack/echo/v4"                   // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware" // Echo's recover middleware
	"github.com/redis/go-redis/v9"                  // Redis client type
	"github.com/rs/zerolog/log"                     // structured logging

	"github.com/iliyamo/cinema-booking-flow/internal/booking"
	"github.com/iliyamo/cinema-booking-flow/internal/config"
	"github.com/iliyamo/cinema-booking-flow/internal/database"
	"github.com/iliyamo/cinema-booking-flow/internal/handler"
	"github.com/iliyamo/cinema-booking-flow/internal/middleware"
	"github.com/iliyamo/cinema-booking-flow/internal/repository"
	"github.com/iliyamo/cinema-booking-flow/internal/router"
	"github.com/iliyamo/cinema-booking-flow/internal/service"
	"github.com/iliyamo/cinema-booking-flow/internal/validation"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment wins
	cfg := config.Load()
	config.SetupLogging(cfg.LogLevel, cfg.Env)

	movies, err := repository.LoadMovieRepo(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("load movie catalog")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable: cache and rate limiting disabled")
	}
	backend := openBackend(config.LoadStoreConfig(), rdb)

	rules := validation.DefaultRules
	rules.MinExpYear = cfg.MinExpYear
	rules.MaxTickets = cfg.MaxTickets

	pc := config.LoadPricingConfig()
	pricing := booking.Pricing{
		AdultCents:  int64(pc.AdultCents),
		ChildCents:  int64(pc.ChildCents),
		SeniorCents: int64(pc.SeniorCents),
		TaxBasisPts: int64(pc.TaxBasisPts),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator(rules)
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	router.RegisterRoutes(e, &handler.HealthHandler{Backend: backend})
	router.RegisterPublic(e, &handler.MovieHandler{Movies: movies}, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterBooking(e,
		handler.NewBookingHandler(movies, backend, repository.DefaultSeatLayout, rules, pricing, service.NewAMQPPublisher(cfg.AMQPURL)),
		middleware.Session(middleware.SessionConfig{
			Secret: cfg.SessionSecret,
			TTLMin: cfg.SessionTTLMin,
			Secure: cfg.Env == "prod",
		}),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// openBackend builds the configured booking-state backend.  A backend that
// cannot be reached yields nil: the service still runs, bookings are just
// not carried between steps.
func openBackend(sc config.StoreConfig, rdb *redis.Client) repository.StateBackend {
	switch sc.Backend {
	case "redis":
		if rdb == nil {
			log.Warn().Msg("redis store selected but redis is unavailable")
			return nil
		}
		return repository.NewRedisKV(rdb, sc.RedisPrefix, sc.TTL)
	case "mysql":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		db, err := database.Open(ctx, database.Config{
			User: sc.DBUser,
			Pass: sc.DBPass,
			Host: sc.DBHost,
			Port: sc.DBPort,
			Name: sc.DBName,
		})
		if err != nil {
			log.Warn().Err(err).Msg("mysql store selected but database is unavailable")
			return nil
		}
		kv := repository.NewMySQLKV(db, sc.TTL)
		if err := kv.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("create booking_state table")
			return nil
		}
		if sc.TTL > 0 {
			go purgeLoop(kv, sc.TTL)
		}
		return kv
	case "memory", "":
		return repository.NewMemoryKV(sc.TTL)
	default:
		log.Fatal().Str("backend", sc.Backend).Msg("unknown STORE_BACKEND")
		return nil
	}
}

// purgeLoop deletes expired booking_state rows once per ttl for the life of
// the process.
func purgeLoop(kv *repository.MySQLKV, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for range t.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := kv.PurgeExpired(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Msg("purge expired booking state")
			continue
		}
		if n > 0 {
			log.Debug().Int64("rows", n).Msg("purged expired booking state")
		}
	}
}
