package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"portfolio-bot/internal/logger"
)

const EnvPrefix = "PORTFOLIO_BOT"

type Config struct {
	Port    string `default:"8080"`
	GinMode string `split_words:"true" default:"release"`
	// AdminToken guards /admin when set.
	AdminToken string `split_words:"true"`

	// KnowledgePath overrides the embedded knowledge base.
	KnowledgePath  string `split_words:"true"`
	KnowledgeWatch bool   `split_words:"true" default:"false"`
	DefaultSession string `split_words:"true" default:"default"`

	Session   SessionConfig   `envconfig:"SESSION"`
	Redis     RedisConfig     `envconfig:"REDIS"`
	Contact   ContactConfig   `envconfig:"CONTACT"`
	RateLimit RateLimitConfig `envconfig:"RATE_LIMIT"`
	Reply     ReplyConfig     `envconfig:"REPLY"`
	Log       logger.Config   `envconfig:"LOG"`
}

type SessionConfig struct {
	Backend  string `default:"memory"`
	Capacity int    `default:"100"`
}

type RedisConfig struct {
	Addr       string        `default:"localhost:6379"`
	DB         int           `default:"0"`
	KeyPrefix  string        `split_words:"true" default:"portfolio-bot:"`
	TTL        time.Duration `default:"24h"`
	MaxRetries int           `split_words:"true" default:"3"`
	Password   string
}

type ContactConfig struct {
	// falls back to the plain RESEND_API_KEY variable
	ResendAPIKey string `envconfig:"RESEND_API_KEY"`
	ToEmail      string `split_words:"true"`
	BaseURL      string `split_words:"true" default:"https://api.resend.com"`
	InboxPath    string `split_words:"true" default:"data/contact.db"`
}

type RateLimitConfig struct {
	// RPS <= 0 disables limiting.
	RPS   float64 `default:"2"`
	Burst int     `default:"5"`
}

// ReplyConfig is the artificial typing delay added to chat replies.
type ReplyConfig struct {
	DelayMin time.Duration `split_words:"true" default:"400ms"`
	DelayMax time.Duration `split_words:"true" default:"1s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session backend %q (want memory or redis)", c.Session.Backend)
	}
	if c.Session.Capacity <= 0 {
		return fmt.Errorf("session capacity must be positive, got %d", c.Session.Capacity)
	}
	if c.DefaultSession == "" {
		return fmt.Errorf("default session id must not be empty")
	}
	if c.Reply.DelayMin < 0 || c.Reply.DelayMax < c.Reply.DelayMin {
		return fmt.Errorf("invalid reply delay range %s..%s", c.Reply.DelayMin, c.Reply.DelayMax)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit burst must be positive when rps is set")
	}
	return nil
}

func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
