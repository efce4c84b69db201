package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/gridpulse/console/internal/app"
	"github.com/gridpulse/console/internal/mockapi"
)

var mockapiCmd = &cobra.Command{
	Use:   "mockapi",
	Short: "Run an in-memory stand-in for the backend API",
	Long: `Serves the backend endpoints the console calls, backed by seeded
in-memory data. Sign in with the seeded super admin account.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMockAPI(cmd.Context())
	},
}

func runMockAPI(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadMockConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := app.NewMockLogger(cfg)

	store, err := mockapi.NewStore(bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed mock store: %w", err)
	}
	srv := mockapi.NewServer(logger, store, mockapi.NewTokens(cfg.Secret, cfg.TokenTTL))

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serveUntilDone(ctx, stop, logger, server)
}
