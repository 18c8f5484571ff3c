package main

import (
	"context"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/raine/listing-wizard/config"
	"github.com/raine/listing-wizard/internal/listing"
	"github.com/raine/listing-wizard/internal/llm"
	"github.com/raine/listing-wizard/internal/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logFileName = "listing-wizard.log"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()

	if missing := config.CheckRequiredConfig(); len(missing) > 0 {
		if isInteractiveTerminal() {
			if !runSetupWizard() {
				waitOnWindows()
				os.Exit(1)
			}
		} else {
			fatalWithWait("missing required config: %s", strings.Join(missing, ", "))
		}
	}

	// JOURNAL_STREAM is set by systemd when running as a service.
	if _, underSystemd := os.LookupEnv("JOURNAL_STREAM"); underSystemd {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			fatalWithWait("failed to open log file: %v", err)
		}
		defer logFile.Close()

		consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
		fileWriter := zerolog.ConsoleWriter{Out: logFile, NoColor: true}
		log.Logger = log.Output(io.MultiWriter(consoleWriter, fileWriter))

		log.Info().Str("logFile", logFileName).Msg("logging to file")
	}
	// Requests without a logger in their context fall back to the global one
	zerolog.DefaultContextLogger = &log.Logger

	cfg, err := config.Load()
	if err != nil {
		fatalWithWait("invalid config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	completer, err := llm.New(ctx, cfg)
	if err != nil {
		fatalWithWait("failed to initialize %s completer: %v", cfg.Provider, err)
	}
	log.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Int("maxTokens", cfg.MaxTokens).
		Dur("timeout", cfg.Timeout).
		Msg("completion provider initialized")

	svc := listing.NewService(completer, listing.WithTimeout(cfg.Timeout))

	gin.SetMode(gin.ReleaseMode)
	router := server.New(svc, server.Options{
		MaxImageBytes:  cfg.MaxImageBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		fatalWithWait("failed to listen on %s: %v", cfg.ListenAddr, err)
	}

	if err := server.Serve(ctx, ln, router); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}
