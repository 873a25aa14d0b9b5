package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	RedisURL    string        `env:"REDIS_URL"`
	Port        int           `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string        `env:"APP_ENV" envDefault:"production"`

	LedgerMaxRetries  uint64 `env:"LEDGER_MAX_RETRIES" envDefault:"3"`
	IDGenMaxAttempts  int    `env:"ID_GEN_MAX_ATTEMPTS" envDefault:"10"`
	ReportConcurrency int    `env:"REPORT_CONCURRENCY" envDefault:"4"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"50"`
	OutboxChannel      string        `env:"OUTBOX_CHANNEL" envDefault:"ledger.movements"`
	OutboxMaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS" envDefault:"5"`

	DBConnectAttempts  int `env:"DB_CONNECT_ATTEMPTS" envDefault:"30"`
	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.IDGenMaxAttempts < 1 {
		return nil, fmt.Errorf("config.Load: ID_GEN_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.ReportConcurrency < 1 {
		return nil, fmt.Errorf("config.Load: REPORT_CONCURRENCY must be at least 1")
	}
	return &cfg, nil
}
