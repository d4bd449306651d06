package main

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/exp/slog"

	"github.com/alovak/settlement-playground/internal/env"
	"github.com/alovak/settlement-playground/processor"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout))

	config := processor.DefaultConfig()
	config.HTTPAddr = env.GetString("HTTP_ADDR", config.HTTPAddr)
	config.ISO8583Addr = env.GetString("ISO8583_ADDR", config.ISO8583Addr)
	config.AuthorizationChecks = env.GetBool("AUTHORIZATION_CHECKS", config.AuthorizationChecks)
	config.MaxAmount = env.GetInt64("MAX_AMOUNT", config.MaxAmount)
	config.EnrolledCardsFile = env.GetString("ENROLLED_CARDS_FILE", "enrolled_credit_cards.json")
	config.EnrollmentDSN = env.GetString("ENROLLMENT_DSN", config.EnrollmentDSN)
	config.PANHashKey = env.GetString("PAN_HASH_KEY", config.PANHashKey)

	app := processor.NewApp(logger, config)

	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Shutdown()
}
