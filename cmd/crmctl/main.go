package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spec-kit/service-crm/internal/config"
	"github.com/spec-kit/service-crm/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	a := NewApp(cfg, logger, os.Stdin, os.Stdout)
	defer a.Close()

	if err := SetupCommands(a).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
