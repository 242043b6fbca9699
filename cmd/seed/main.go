package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mailmerge/config"
	"github.com/oksasatya/mailmerge/internal/application"
	pginfra "github.com/oksasatya/mailmerge/internal/infrastructure/postgres"
	"github.com/oksasatya/mailmerge/pkg/helpers"
)

// seed creates the operator account from OPERATOR_EMAIL / OPERATOR_PASSWORD.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)

	if cfg.OperatorEmail == "" || len(cfg.OperatorPassword) < 8 {
		log.Fatal("OPERATOR_EMAIL and OPERATOR_PASSWORD (min 8 chars) are required")
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	svc := application.NewAuthService(pginfra.NewOperatorRepository(pool), nil, nil, logger)
	op, created, err := svc.Seed(ctx, cfg.OperatorEmail, cfg.OperatorPassword, cfg.OperatorName)
	if err != nil {
		log.Fatalf("failed to seed operator: %v", err)
	}
	helpers.LogInfo(logger, "operator ready", logrus.Fields{"id": op.ID, "email": op.Email, "created": created})
}
