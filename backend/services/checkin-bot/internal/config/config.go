package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	libconfig "fleetcheck/backend/libs/config"
	"fleetcheck/backend/services/checkin-bot/internal/password"
)

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token              string `yaml:"token" env:"BOT_TOKEN"`
	PollTimeoutSeconds int    `yaml:"pollTimeoutSeconds" env:"BOT_POLL_TIMEOUT"`
	Workers            int    `yaml:"workers" env:"BOT_WORKERS"`
}

// AccessConfig lists who may do what. Pins pairs each driver alias with its PIN or bcrypt hash.
type AccessConfig struct {
	AdminIDs []int64    `yaml:"adminIds" env:"ADMIN_IDS"`
	Pins     DriverPins `yaml:"driverPins" env:"DRIVER_PINS"`
}

// DriverPins keeps alias:pin pairs in the order they were configured.
type DriverPins []password.Pin

// UnmarshalText parses "V1:1111,V2:2222".
func (p *DriverPins) UnmarshalText(text []byte) error {
	out := DriverPins{}
	for _, pair := range strings.Split(string(text), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		alias, pin, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("pair %q: expected alias:pin", pair)
		}
		out = append(out, password.Pin{Alias: strings.TrimSpace(alias), Secret: strings.TrimSpace(pin)})
	}
	*p = out
	return nil
}

// UnmarshalYAML accepts a mapping in document order or the same string form as the env var.
func (p *DriverPins) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return p.UnmarshalText([]byte(node.Value))
	case yaml.MappingNode:
		out := make(DriverPins, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			out = append(out, password.Pin{
				Alias:  strings.TrimSpace(node.Content[i].Value),
				Secret: strings.TrimSpace(node.Content[i+1].Value),
			})
		}
		*p = out
		return nil
	default:
		return fmt.Errorf("config: driverPins must be a mapping, line %d", node.Line)
	}
}

// DispatchConfig configures dispatcher notifications. ChatID overrides the stored target when non-zero.
type DispatchConfig struct {
	ChatID               int64 `yaml:"chatId" env:"DISPATCH_CHAT_ID"`
	NotifyTimeoutSeconds int   `yaml:"notifyTimeoutSeconds" env:"CHECKIN_NOTIFY_TIMEOUT_SECONDS"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"CHECKIN_POSTGRES_DSN"`
}

// RedisConfig is optional; an empty Addr disables the activity cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"CHECKIN_REDIS_ADDR"`
	Password string `yaml:"password" env:"CHECKIN_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"CHECKIN_REDIS_DB"`
	TTLHours int    `yaml:"ttlHours" env:"CHECKIN_REDIS_TTL_HOURS"`
}

// HTTPConfig configures the health, metrics and admin API server. An empty JWT secret
// leaves the admin routes unmounted.
type HTTPConfig struct {
	Port             string `yaml:"port" env:"CHECKIN_HTTP_PORT"`
	JWTSecret        string `yaml:"jwtSecret" env:"CHECKIN_JWT_SECRET"`
	JWTExpiresMinute int    `yaml:"jwtExpiresMinutes" env:"CHECKIN_JWT_EXPIRES_MINUTES"`
}

type FormConfig struct {
	Timezone        string `yaml:"timezone" env:"CHECKIN_TIMEZONE"`
	StrictPhotoDone bool   `yaml:"strictPhotoDone" env:"CHECKIN_STRICT_PHOTO_DONE"`
}

// Config represents service configuration loaded from YAML/env.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Access   AccessConfig   `yaml:"access"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	HTTP     HTTPConfig     `yaml:"http"`
	Form     FormConfig     `yaml:"form"`
}

// Defaults returns the configuration used before YAML and env are applied.
func Defaults() *Config {
	cfg := &Config{}
	cfg.Bot.PollTimeoutSeconds = 60
	cfg.Bot.Workers = 4
	cfg.Dispatch.NotifyTimeoutSeconds = 30
	cfg.Redis.TTLHours = 24 * 7
	cfg.HTTP.Port = "8090"
	cfg.HTTP.JWTExpiresMinute = 720
	cfg.Form.Timezone = "Europe/Chisinau"
	return cfg
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := Defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings of the bot process.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Bot.Token) == "" {
		return errors.New("config: BOT_TOKEN is required")
	}
	if c.Database.DSN == "" {
		return errors.New("config: database DSN is required")
	}
	if len(c.Access.Pins) == 0 {
		return errors.New("config: DRIVER_PINS must list at least one alias:pin pair")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Bot.Workers <= 0 {
		c.Bot.Workers = 1
	}
	return nil
}

// Location resolves the zone used for ts_local.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Form.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Form.Timezone, err)
	}
	return loc, nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.HTTP.JWTExpiresMinute <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.HTTP.JWTExpiresMinute) * time.Minute
}

func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Bot.PollTimeoutSeconds) * time.Second
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Dispatch.NotifyTimeoutSeconds) * time.Second
}

func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTLHours <= 0 {
		return 0
	}
	return time.Duration(c.Redis.TTLHours) * time.Hour
}
