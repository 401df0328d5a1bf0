// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/approval-vote/cliparse"
	"github.com/danielhkuo/approval-vote/db"
	"github.com/danielhkuo/approval-vote/middleware"
	"github.com/danielhkuo/approval-vote/router"
	"github.com/danielhkuo/approval-vote/verify"
)

// Flags are parsed by cliparse so every command shares the same
// flag and environment handling
var rootCmd = &cobra.Command{
	Use:                "approvalvote",
	Short:              "Approval voting poll API",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(args)
	},
}

var serveCmd = &cobra.Command{
	Use:                "serve",
	Short:              "Serve the API web service (default)",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig parses flags; -h prints usage and is not an error
func loadConfig(args []string) (cliparse.Config, bool, error) {
	cfg, err := cliparse.ParseFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		return cliparse.Config{}, false, nil
	}
	if err != nil {
		return cliparse.Config{}, false, err
	}
	return cfg, true, nil
}

func newMailer(cfg cliparse.Config) verify.Mailer {
	if cfg.SMTPHost == "" {
		slog.Warn("SMTP_HOST not set, verification codes will only be logged")
		return verify.LogMailer{}
	}
	return &verify.SMTPMailer{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}

func serve(args []string) error {
	cfg, ok, err := loadConfig(args)
	if err != nil || !ok {
		return err
	}

	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	mux := router.NewRouter(dbConn, cfg, newMailer(cfg))

	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	slog.Info("Listening", "port", cfg.Port, "base_url", cfg.BaseURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}
