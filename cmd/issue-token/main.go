package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/josh-kwaku/bank-ledger/internal/auth"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
)

type tokenConfig struct {
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	AppEnv    string        `env:"APP_ENV" envDefault:"development"`
}

func main() {
	operator := flag.String("operator", "", "operator id (uuid); a new one is generated when empty")
	name := flag.String("name", "", "operator display name")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := env.ParseAs[tokenConfig]()
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue-token:", err)
		os.Exit(1)
	}
	// stdout carries only the token
	slog.SetDefault(logging.New(os.Stderr, "issue-token", "info", cfg.AppEnv))

	operatorID := uuid.New()
	if *operator != "" {
		operatorID, err = uuid.Parse(*operator)
		if err != nil {
			slog.Error("invalid operator id", "operator", *operator, "error", err)
			os.Exit(1)
		}
	}
	if *name == "" {
		slog.Error("operator name is required")
		os.Exit(1)
	}

	token, err := auth.GenerateToken(operatorID, *name, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}

	slog.Info("token issued", "operator_id", operatorID, "expires_in", cfg.TokenTTL.String())
	fmt.Println(token)
}
