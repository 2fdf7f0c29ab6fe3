package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, loaded from the environment.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	MySQLDSN        string        `env:"MYSQL_DSN" envDefault:"root:root@tcp(localhost:3306)/vending?parseTime=true"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY,required,notEmpty"`
	OpenAIModel     string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	AccountName     string        `env:"ACCOUNT_NAME" envDefault:"john"`
	AccountBalance  int           `env:"ACCOUNT_BALANCE" envDefault:"20"`
	LabelCacheTTL   time.Duration `env:"LABEL_CACHE_TTL" envDefault:"10m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
