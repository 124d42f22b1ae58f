// Package config aggregates the runtime settings read from the environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/kentalbores/IntProg-sub001/pkg/database"
	"github.com/kentalbores/IntProg-sub001/pkg/utilities"
)

const (
	defaultAddr      = "0.0.0.0:8431"
	defaultSecret    = "dev-secret-change-me"
	defaultTokenTTL  = 15 * time.Minute
	defaultShutdown  = 5 * time.Second
	defaultJWTIssuer = "eventhub"
)

type Config struct {
	HTTPAddr        string
	JWTSecret       string
	JWTIssuer       string
	AccessTokenTTL  time.Duration
	AuthRequired    bool
	ShutdownTimeout time.Duration
	SnowflakeNode   int64
	Database        database.Config
	Log             utilities.Config
}

// Load reads the configuration; unset or malformed values fall back to defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", defaultAddr),
		JWTSecret:       getEnv("JWT_SECRET", defaultSecret),
		JWTIssuer:       getEnv("JWT_ISSUER", defaultJWTIssuer),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", defaultTokenTTL),
		AuthRequired:    getBool("AUTH_REQUIRED"),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", defaultShutdown),
		SnowflakeNode:   utilities.SnowflakeNodeFromEnv(),
		Database:        database.ConfigFromEnv(),
		Log:             utilities.ConfigFromEnv(),
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
