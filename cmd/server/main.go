package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/barhatch/protonmail-mcp-server/internal/analytics"
	"github.com/barhatch/protonmail-mcp-server/internal/config"
	"github.com/barhatch/protonmail-mcp-server/internal/logging"
	"github.com/barhatch/protonmail-mcp-server/internal/mailbox"
	"github.com/barhatch/protonmail-mcp-server/internal/mcp"
	"github.com/barhatch/protonmail-mcp-server/internal/smtp"
	"github.com/barhatch/protonmail-mcp-server/internal/tools"
	"github.com/barhatch/protonmail-mcp-server/internal/util"
)

var (
	version     = "dev"
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("protonmail-mcp-server version %s\n", version)
		os.Exit(0)
	}

	// Set up logging. Stdout carries the MCP protocol, so logs go to stderr.
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stderr)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if cfg.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	// Keep a bounded tail of log entries in memory for the get_logs tool.
	recorder := logging.NewRecorder(cfg.LogBufferSize)
	logger.AddHook(recorder)

	logger.Info("Starting ProtonMail MCP Server")

	// Initialize the mailbox client and session
	client := mailbox.NewClient(cfg, logger)
	defer client.Close()

	session, err := mailbox.NewSession(client, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create mailbox session")
	}

	// Initialize the analytics engine
	engine := analytics.NewEngine(logger)

	// Initialize the SMTP sender
	sender := smtp.NewClient(cfg, logger)

	// Build the tool registry
	registry := tools.NewRegistry(cfg, session, engine, sender, recorder, logger)

	// Create MCP server
	server := mcp.NewServer(registry, logger)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Periodic background sync keeps the folder cache and analytics snapshot
	// warm when enabled.
	if cfg.AutoSync {
		go autoSync(ctx, cfg, session, engine, logger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Run server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	case err := <-errChan:
		logger.WithError(err).Error("Server error")
		cancel()
	}

	logger.Info("Shutting down ProtonMail MCP Server")
}

func autoSync(ctx context.Context, cfg *config.Config, session *mailbox.Session, engine *analytics.Engine, logger *logrus.Logger) {
	log := logger.WithField("component", "autosync")
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := util.Retry(ctx, 2, 5*time.Second, func() error {
				_, err := session.SyncFolders()
				return err
			})
			if err != nil {
				log.WithError(err).Warn("Background folder sync failed")
				continue
			}
			emails, err := session.GetEmails("", 100, 0)
			if err != nil {
				log.WithError(err).Warn("Background email sync failed")
				continue
			}
			if cfg.EnableAnalytics {
				engine.UpdateEmails(emails)
			}
			log.WithField("emails", len(emails)).Debug("Background sync complete")
		}
	}
}
