package config

import (
	"os"
	"time"
)

// Server captures process-level configuration for the biokey service.
type Server struct {
	Addr         string
	AccountEmail string
	ChallengeTTL time.Duration
	RedisURL     string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("BIOKEY_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	// Single logical account; the email doubles as its identifier.
	accountEmail := os.Getenv("ACCOUNT_EMAIL")
	if accountEmail == "" {
		accountEmail = "user@example.com"
	}

	challengeTTL := 10 * time.Minute
	if raw := os.Getenv("CHALLENGE_TTL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			challengeTTL = d
		}
	}

	return Server{
		Addr:         addr,
		AccountEmail: accountEmail,
		ChallengeTTL: challengeTTL,
		RedisURL:     os.Getenv("REDIS_URL"),
	}
}
