package config

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// DefaultCancellationTiers matches the standard policy table:
// full refund a day out, half within a day, nothing within six hours.
const DefaultCancellationTiers = "24:100:0,6:50:50,0:0:100"

// CancellationTier maps a minimum hours-until-start bound (inclusive)
// to a customer refund and an owner/coach penalty percentage.
type CancellationTier struct {
	MinHours       float64
	RefundPercent  int
	PenaltyPercent int
}

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Business timezone used to anchor civil booking dates.
	Timezone *time.Location

	// Platform fee charged on top of the booking amount, in percent.
	PlatformFeePercent int
	// Whether the platform fee is returned on refund.
	PlatformFeeRefundable bool

	// Cancellation policy tiers, sorted by MinHours descending.
	CancellationTiers []CancellationTier

	// Bounded retry budget for optimistic-lock conflicts on reservation.
	ReserveMaxAttempts int

	// AMQP broker for booking events; empty disables event publishing.
	AMQPURL      string
	AMQPExchange string

	// Local directory for uploaded field photos.
	PhotoDir string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBDSN = os.Getenv("DB_DSN")
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttlStr := getEnv("JWT_ACCESS_TOKEN_TTL", "15m")
	ttl, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.JWTAccessTokenTTL = ttl

	cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	tzName := getEnv("BUSINESS_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", tzName, err)
	}
	cfg.Timezone = loc

	cfg.PlatformFeePercent, err = getEnvAsInt("PLATFORM_FEE_PERCENT", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid PLATFORM_FEE_PERCENT: %w", err)
	}
	if cfg.PlatformFeePercent < 0 || cfg.PlatformFeePercent > 100 {
		return nil, fmt.Errorf("PLATFORM_FEE_PERCENT must be within [0,100]")
	}

	cfg.PlatformFeeRefundable = getEnv("PLATFORM_FEE_REFUNDABLE", "false") == "true"

	tiersStr := getEnv("CANCELLATION_TIERS", DefaultCancellationTiers)
	cfg.CancellationTiers, err = ParseCancellationTiers(tiersStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CANCELLATION_TIERS: %w", err)
	}

	cfg.ReserveMaxAttempts, err = getEnvAsInt("RESERVE_MAX_ATTEMPTS", 3)
	if err != nil {
		return nil, fmt.Errorf("invalid RESERVE_MAX_ATTEMPTS: %w", err)
	}
	if cfg.ReserveMaxAttempts < 1 {
		return nil, fmt.Errorf("RESERVE_MAX_ATTEMPTS must be at least 1")
	}

	cfg.AMQPURL = getEnv("AMQP_URL", "")
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", "booking.events")

	cfg.PhotoDir = getEnv("PHOTO_DIR", "./uploads/photos")

	return cfg, nil
}

// ParseCancellationTiers parses a "minHours:refund%:penalty%" comma list,
// e.g. "24:100:0,6:50:50,0:0:100". The result is sorted by MinHours
// descending so the first matching tier wins. The list must contain a
// tier with MinHours 0 so every future booking maps to some tier.
func ParseCancellationTiers(s string) ([]CancellationTier, error) {
	var tiers []CancellationTier
	for _, part := range strings.Split(s, ",") {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed tier %q", part)
		}

		minHours, err := strconv.ParseFloat(fields[0], 64)
		if err != nil || minHours < 0 {
			return nil, fmt.Errorf("malformed tier bound %q", fields[0])
		}
		refund, err := strconv.Atoi(fields[1])
		if err != nil || refund < 0 || refund > 100 {
			return nil, fmt.Errorf("malformed refund percent %q", fields[1])
		}
		penalty, err := strconv.Atoi(fields[2])
		if err != nil || penalty < 0 || penalty > 100 {
			return nil, fmt.Errorf("malformed penalty percent %q", fields[2])
		}

		tiers = append(tiers, CancellationTier{
			MinHours:       minHours,
			RefundPercent:  refund,
			PenaltyPercent: penalty,
		})
	}

	if len(tiers) == 0 {
		return nil, fmt.Errorf("at least one tier is required")
	}

	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].MinHours > tiers[j].MinHours
	})

	if tiers[len(tiers)-1].MinHours != 0 {
		return nil, fmt.Errorf("a tier with a 0 hour bound is required")
	}

	return tiers, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}
