package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/yungbote/deskchat-backend/internal/app"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr        string
		configPath  string
		migrateOnly bool
	)
	flagSet := pflag.NewFlagSet("deskchat", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	flagSet.StringVar(&configPath, "config", "", "YAML config file (overrides CONFIG_FILE)")
	flagSet.BoolVar(&migrateOnly, "migrate-only", false, "run database migrations and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Migrate(); err != nil {
		return err
	}
	if migrateOnly {
		a.Log.Info("Migrations applied; exiting")
		return nil
	}
	return a.Run(ctx)
}
