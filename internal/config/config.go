// Package config resolves openbox settings from defaults, an optional config
// file, an optional .env file, OPENBOX_* environment variables and command
// line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. OPENBOX_DB.
const EnvPrefix = "OPENBOX"

// Viper keys. Nested keys map to env vars with "." replaced by "_", so
// "sendgrid.api_key" is read from OPENBOX_SENDGRID_API_KEY.
const (
	KeyDB             = "db"
	KeyStore          = "store"
	KeyRedisAddr      = "redis.addr"
	KeyRedisPassword  = "redis.password"
	KeyRedisDB        = "redis.db"
	KeyRedisPrefix    = "redis.prefix"
	KeyDispatch       = "dispatch"
	KeySendGridAPIKey = "sendgrid.api_key"
	KeyEmailFrom      = "email.from"
	KeyEmailFromName  = "email.from_name"
	KeyEmailAdmin     = "email.admin"
	KeyNATSURL        = "nats.url"
	KeyNATSPrefix     = "nats.subject_prefix"
	KeyWeekly         = "schedule.weekly"
	KeyMetricsAddr    = "metrics.addr"
	KeyLogMode        = "log.mode"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Dispatcher names accepted in Dispatch.
const (
	DispatchLog   = "log"
	DispatchEmail = "email"
	DispatchNATS  = "nats"
)

// Config holds all openbox configuration.
type Config struct {
	// DBPath is the SQLite file. Empty means store.DefaultDBPath.
	DBPath string

	// Store selects the backend: "sqlite", "memory" or "redis".
	Store string

	Redis    RedisConfig
	Dispatch []string
	SendGrid SendGridConfig
	Email    EmailConfig
	NATS     NATSConfig

	// WeeklySchedule is a six-field cron spec (seconds first).
	WeeklySchedule string

	// MetricsAddr is where `openbox schedule` serves /metrics. Empty
	// disables the endpoint.
	MetricsAddr string

	LogMode string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type SendGridConfig struct {
	APIKey string
}

type EmailConfig struct {
	From     string
	FromName string
	Admin    string // receives first-mistake alerts and weekly reports
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store:    StoreSQLite,
		Dispatch: []string{DispatchLog},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "openbox",
		},
		Email: EmailConfig{
			From:     "noreply@openbox.community",
			FromName: "OpenBox Community",
		},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "openbox.signals",
		},
		WeeklySchedule: "0 0 9 * * MON",
		MetricsAddr:    ":9464",
		LogMode:        "dev",
	}
}

// NewViper returns a viper instance primed with defaults and environment
// lookup.
func NewViper() *viper.Viper {
	d := DefaultConfig()
	v := viper.New()

	v.SetDefault(KeyDB, d.DBPath)
	v.SetDefault(KeyStore, d.Store)
	v.SetDefault(KeyRedisAddr, d.Redis.Addr)
	v.SetDefault(KeyRedisPassword, d.Redis.Password)
	v.SetDefault(KeyRedisDB, d.Redis.DB)
	v.SetDefault(KeyRedisPrefix, d.Redis.Prefix)
	v.SetDefault(KeyDispatch, strings.Join(d.Dispatch, ","))
	v.SetDefault(KeySendGridAPIKey, d.SendGrid.APIKey)
	v.SetDefault(KeyEmailFrom, d.Email.From)
	v.SetDefault(KeyEmailFromName, d.Email.FromName)
	v.SetDefault(KeyEmailAdmin, d.Email.Admin)
	v.SetDefault(KeyNATSURL, d.NATS.URL)
	v.SetDefault(KeyNATSPrefix, d.NATS.SubjectPrefix)
	v.SetDefault(KeyWeekly, d.WeeklySchedule)
	v.SetDefault(KeyMetricsAddr, d.MetricsAddr)
	v.SetDefault(KeyLogMode, d.LogMode)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadDotEnv loads path into the process environment if it exists. Variables
// already set are left alone.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configFile (if non-empty) into v and resolves a Config.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := Config{
		DBPath: v.GetString(KeyDB),
		Store:  strings.ToLower(strings.TrimSpace(v.GetString(KeyStore))),
		Redis: RedisConfig{
			Addr:     v.GetString(KeyRedisAddr),
			Password: v.GetString(KeyRedisPassword),
			DB:       v.GetInt(KeyRedisDB),
			Prefix:   v.GetString(KeyRedisPrefix),
		},
		Dispatch: splitList(v.GetStringSlice(KeyDispatch)),
		SendGrid: SendGridConfig{APIKey: v.GetString(KeySendGridAPIKey)},
		Email: EmailConfig{
			From:     v.GetString(KeyEmailFrom),
			FromName: v.GetString(KeyEmailFromName),
			Admin:    v.GetString(KeyEmailAdmin),
		},
		NATS: NATSConfig{
			URL:           v.GetString(KeyNATSURL),
			SubjectPrefix: v.GetString(KeyNATSPrefix),
		},
		WeeklySchedule: v.GetString(KeyWeekly),
		MetricsAddr:    v.GetString(KeyMetricsAddr),
		LogMode:        v.GetString(KeyLogMode),
	}
	return cfg, nil
}

// splitList accepts both list values and comma separated strings.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks that the selected backends have what they need.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("OPENBOX_REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store: %q", c.Store)
	}

	for _, d := range c.Dispatch {
		switch d {
		case DispatchLog:
		case DispatchEmail:
			if c.SendGrid.APIKey == "" {
				return fmt.Errorf("OPENBOX_SENDGRID_API_KEY is required for the email dispatcher")
			}
			if c.Email.From == "" {
				return fmt.Errorf("OPENBOX_EMAIL_FROM is required for the email dispatcher")
			}
		case DispatchNATS:
			if c.NATS.URL == "" {
				return fmt.Errorf("OPENBOX_NATS_URL is required for the nats dispatcher")
			}
		default:
			return fmt.Errorf("unknown dispatcher: %q", d)
		}
	}
	return nil
}
