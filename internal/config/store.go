package config

import "time"

// StoreConfig selects and tunes the booking-state backend.
//
// Backend is one of "memory", "redis" or "mysql".  TTL bounds how long an
// untouched booking session survives in memory or Redis.  The DB* fields
// are only read for the mysql backend.
type StoreConfig struct {
    Backend     string
    TTL         time.Duration
    RedisPrefix string
    DBUser      string
    DBPass      string
    DBHost      string
    DBPort      string
    DBName      string
}

// LoadStoreConfig reads STORE_* and DB_* variables.
func LoadStoreConfig() StoreConfig {
    return StoreConfig{
        Backend:     envStr("STORE_BACKEND", "memory"),
        TTL:         envDur("STORE_TTL", 2*time.Hour),
        RedisPrefix: envStr("STORE_REDIS_PREFIX", "booking"),
        DBUser:      envStr("DB_USER", "root"),
        DBPass:      envStr("DB_PASS", ""),
        DBHost:      envStr("DB_HOST", "localhost"),
        DBPort:      envStr("DB_PORT", "3306"),
        DBName:      envStr("DB_NAME", "booking"),
    }
}

// PricingConfig holds ticket prices in cents and the tax rate in basis
// points.
type PricingConfig struct {
    AdultCents  int
    ChildCents  int
    SeniorCents int
    TaxBasisPts int
}

// LoadPricingConfig reads PRICE_* variables, defaulting to 12.50 / 11.00 /
// 12.00 with 10% tax.
func LoadPricingConfig() PricingConfig {
    return PricingConfig{
        AdultCents:  envInt("PRICE_ADULT_CENTS", 1250),
        ChildCents:  envInt("PRICE_CHILD_CENTS", 1100),
        SeniorCents: envInt("PRICE_SENIOR_CENTS", 1200),
        TaxBasisPts: envInt("PRICE_TAX_BASIS_POINTS", 1000),
    }
}
