// ABOUTME: Entry point for the swapchat terminal client
// ABOUTME: Wires config, auth, API client, channel, cache and TUI together

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/skillswap/swapchat/internal/api"
	"github.com/skillswap/swapchat/internal/auth"
	"github.com/skillswap/swapchat/internal/channel"
	"github.com/skillswap/swapchat/internal/config"
	"github.com/skillswap/swapchat/internal/conversation"
	"github.com/skillswap/swapchat/internal/scroll"
	"github.com/skillswap/swapchat/internal/store"
	"github.com/skillswap/swapchat/internal/tui"
)

// Version is set by goreleaser at build time.
var version = "dev"

// getConfigPath returns the path to the swapchat config file.
// Priority: SWAPCHAT_CONFIG env var > XDG_CONFIG_HOME/swapchat/config.yaml > ~/.config/swapchat/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SWAPCHAT_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "swapchat", "config.yaml")
}

func main() {
	// Local .env keeps credentials out of the shell history.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	cyan.Println("swapchat")
	gray.Printf("version: %s\n", version)
	gray.Printf("config:  %s\n", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer closeLog()

	email := os.Getenv("SWAPCHAT_EMAIL")
	password := os.Getenv("SWAPCHAT_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("SWAPCHAT_EMAIL and SWAPCHAT_PASSWORD must be set")
	}

	tokens := auth.NewStore(auth.Tokens{})
	client := api.New(cfg.Server.BaseURL, tokens, logger)
	client.SetTimeout(cfg.Server.RequestTimeout)

	user, err := client.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if claims, err := auth.Inspect(tokens.Access()); err == nil {
		logger.Debug("session token", "subject", claims.Subject, "expires_at", claims.ExpiresAt)
	}

	var cache conversation.MessageCache
	var messageStore *store.Cache
	if cfg.Cache.Enabled {
		messageStore, err = store.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("opening message cache: %w", err)
		}
		defer messageStore.Close()
		cache = messageStore
	}

	handle := channel.NewHandle(cfg.Server.WSURL, tokens, logger)
	defer handle.Close()

	ctl := scroll.NewController(cfg.Scroll.BottomThreshold, cfg.Scroll.TopThreshold)
	coord := conversation.NewCoordinator(client, handle, cache, ctl, cfg.History.PageSize, logger)

	return tui.Run(ctx, tui.New(ctx, coord, client, handle, user.ID))
}

// setupLogger builds the application logger. The TUI owns the terminal,
// so logs go to the configured file or are discarded.
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(f, opts)
	} else {
		handler = slog.NewTextHandler(f, opts)
	}
	return slog.New(handler), func() { _ = f.Close() }, nil
}
