package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"port"`

	StoreDriver string         `mapstructure:"store_driver"` // postgres | memory
	DatabaseURL string         `mapstructure:"database_url"`
	Postgres    PostgresConfig `mapstructure:"postgres"`

	LLMProvider  string `mapstructure:"llm_provider"` // gemini | gpt | deepseek
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
	OpenAIModel  string `mapstructure:"openai_model"`

	DeepseekAPIKey string `mapstructure:"deepseek_api_key"`
	DeepseekModel  string `mapstructure:"deepseek_model"`

	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	WebhookURL       string `mapstructure:"webhook_url"`
	RedisAddr        string `mapstructure:"redis_addr"`

	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

type PostgresConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	DB       string `mapstructure:"db"`
}

var envBindings = map[string]string{
	"port":                 "PORT",
	"store_driver":         "STORE_DRIVER",
	"database_url":         "DATABASE_URL",
	"postgres.user":        "POSTGRES_USER",
	"postgres.password":    "POSTGRES_PASSWORD",
	"postgres.host":        "PGHOST",
	"postgres.port":        "PGPORT",
	"postgres.db":          "POSTGRES_DB",
	"llm_provider":         "LLM_PROVIDER",
	"gemini_api_key":       "GEMINI_API_KEY",
	"gemini_model":         "GEMINI_MODEL",
	"openai_api_key":       "OPENAI_API_KEY",
	"openai_model":         "OPENAI_MODEL",
	"deepseek_api_key":     "DEEPSEEK_API_KEY",
	"deepseek_model":       "DEEPSEEK_MODEL",
	"telegram_bot_token":   "TELEGRAM_BOT_TOKEN",
	"webhook_url":          "WEBHOOK_URL",
	"redis_addr":           "REDIS_ADDR",
	"log_level":            "LOG_LEVEL",
	"cors_allowed_origins": "CORS_ALLOWED_ORIGINS",
}

// Load reads defaults, then the optional YAML file, then the environment (highest priority).
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("port", "8000")
	v.SetDefault("store_driver", "postgres")
	v.SetDefault("postgres.user", "geotutor")
	v.SetDefault("postgres.host", "db")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.db", "geotutor")
	v.SetDefault("llm_provider", "gemini")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("openai_model", "gpt-4o-mini")
	v.SetDefault("deepseek_model", "deepseek-chat")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors_allowed_origins", []string{"*"})

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.AllowedOrigins = splitOrigins(cfg.AllowedOrigins)
	return &cfg, nil
}

// env values arrive as one comma separated string
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Validate checks the settings every binary needs: a known store and a usable LLM provider.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q: use postgres or memory", c.StoreDriver)
	}
	switch strings.ToLower(c.LLMProvider) {
	case "gemini":
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("missing required env GEMINI_API_KEY")
		}
	case "gpt", "openai":
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("missing required env OPENAI_API_KEY")
		}
	case "deepseek":
		if strings.TrimSpace(c.DeepseekAPIKey) == "" {
			return errors.New("missing required env DEEPSEEK_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q: use gemini, gpt or deepseek", c.LLMProvider)
	}
	return nil
}

// DSN prefers DATABASE_URL and otherwise builds one from the POSTGRES_* / PG* settings.
func (c *Config) DSN() string {
	if v := strings.TrimSpace(c.DatabaseURL); v != "" {
		return v
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Password),
		Host:     net.JoinHostPort(c.Postgres.Host, c.Postgres.Port),
		Path:     "/" + c.Postgres.DB,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary describes the database target without the password, for logs.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	parts := []string{"host=" + u.Hostname()}
	if p := u.Port(); p != "" {
		parts = append(parts, "port="+p)
	}
	parts = append(parts, "db="+strings.TrimPrefix(u.Path, "/"), "user="+u.User.Username())
	return strings.Join(parts, " ")
}
