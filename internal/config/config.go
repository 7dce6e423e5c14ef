package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultCacheTTL           = 2 * time.Minute
	defaultStreamKeepAlive    = 30 * time.Second
	defaultTopPerSkill        = 3
	defaultCapacityCeiling    = 2
	defaultAcceptPoints       = 10
	defaultCollaborationBonus = 25
	defaultDecisionsPerMinute = 30
	defaultFreezeAfter        = 5 * 7 * 24 * time.Hour
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	EventsChannel      string
	JWTSecret          string
	CacheTTL           time.Duration
	StreamKeepAlive    time.Duration
	TopPerSkill        int
	CapacityCeiling    int
	AcceptPoints       int
	CollaborationBonus int
	DecisionsPerMinute int
	FreezeAfter        time.Duration
	AccessLog          bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("KONVERGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Konverge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.access_log", true)
	v.SetDefault("events.channel", "konverge")
	v.SetDefault("events.keepalive", defaultStreamKeepAlive.String())
	v.SetDefault("cache.ttl", defaultCacheTTL.String())
	v.SetDefault("matching.top_per_skill", defaultTopPerSkill)
	v.SetDefault("matching.capacity_ceiling", defaultCapacityCeiling)
	v.SetDefault("engagement.accept_points", defaultAcceptPoints)
	v.SetDefault("engagement.collaboration_bonus", defaultCollaborationBonus)
	v.SetDefault("rate_limit.decisions_per_minute", defaultDecisionsPerMinute)
	v.SetDefault("user_status.freeze_after", defaultFreezeAfter.String())

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        strings.TrimSpace(v.GetString("database.url")),
		RedisURL:           strings.TrimSpace(v.GetString("redis.url")),
		NATSURL:            strings.TrimSpace(v.GetString("nats.url")),
		EventsChannel:      strings.TrimSpace(v.GetString("events.channel")),
		JWTSecret:          v.GetString("jwt.secret"),
		CacheTTL:           durationOr(v.GetString("cache.ttl"), defaultCacheTTL),
		StreamKeepAlive:    durationOr(v.GetString("events.keepalive"), defaultStreamKeepAlive),
		TopPerSkill:        positiveOr(v.GetInt("matching.top_per_skill"), defaultTopPerSkill),
		CapacityCeiling:    positiveOr(v.GetInt("matching.capacity_ceiling"), defaultCapacityCeiling),
		AcceptPoints:       positiveOr(v.GetInt("engagement.accept_points"), defaultAcceptPoints),
		CollaborationBonus: positiveOr(v.GetInt("engagement.collaboration_bonus"), defaultCollaborationBonus),
		DecisionsPerMinute: positiveOr(v.GetInt("rate_limit.decisions_per_minute"), defaultDecisionsPerMinute),
		FreezeAfter:        durationOr(v.GetString("user_status.freeze_after"), defaultFreezeAfter),
		AccessLog:          v.GetBool("app.access_log"),
	}

	if cfg.EventsChannel == "" {
		cfg.EventsChannel = "konverge"
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
