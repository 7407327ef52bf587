// Package config binds the acceptor's enumerated configuration (spec §6)
// from environment variables and an optional .env file, the way finalex's
// services/fiat/internal/config package does.
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds every knob spec §6 enumerates plus the persistence/cache
// targets the domain stack wires in (§10).
type Config struct {
	ListenHost      string
	ListenPort      int
	ServerCompID    string
	DefaultHeartbeatS int
	IdleTimeoutMultiplier float64
	MaxSessions     int // 0 means unbounded

	PostgresDSN string
	RedisAddr   string
	RedisDB     int

	Production bool
}

// Load reads ".env" if present, then environment variables, falling back to
// spec §6's defaults for anything unset.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.SetDefault("LISTEN_HOST", "0.0.0.0")
	viper.SetDefault("LISTEN_PORT", 15001)
	viper.SetDefault("SERVER_COMP_ID", "BROKER")
	viper.SetDefault("DEFAULT_HEARTBEAT_S", 30)
	viper.SetDefault("INBOUND_IDLE_TIMEOUT_MULTIPLIER", 2.4)
	viper.SetDefault("MAX_SESSIONS", 0)
	viper.SetDefault("REDIS_DB", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("config: no .env file found: %v", err)
	}

	return &Config{
		ListenHost:            viper.GetString("LISTEN_HOST"),
		ListenPort:            viper.GetInt("LISTEN_PORT"),
		ServerCompID:          viper.GetString("SERVER_COMP_ID"),
		DefaultHeartbeatS:     viper.GetInt("DEFAULT_HEARTBEAT_S"),
		IdleTimeoutMultiplier: viper.GetFloat64("INBOUND_IDLE_TIMEOUT_MULTIPLIER"),
		MaxSessions:           viper.GetInt("MAX_SESSIONS"),
		PostgresDSN:           viper.GetString("POSTGRES_DSN"),
		RedisAddr:             viper.GetString("REDIS_ADDR"),
		RedisDB:               viper.GetInt("REDIS_DB"),
		Production:            viper.GetBool("PRODUCTION"),
	}
}

// IdleTimeout is the §4.2 "2.4 x heartbeat_interval_s" teardown threshold
// for a given session's negotiated heartbeat interval.
func (c *Config) IdleTimeout(heartbeatS int) time.Duration {
	return time.Duration(float64(heartbeatS) * c.IdleTimeoutMultiplier * float64(time.Second))
}
