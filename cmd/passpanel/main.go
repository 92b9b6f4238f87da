package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"

	cipheradapter "github.com/ericfisherdev/passpanel/internal/adapter/driven/cipher"
	"github.com/ericfisherdev/passpanel/internal/adapter/driven/keyfile"
	sqliteadapter "github.com/ericfisherdev/passpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/passpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/passpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/passpanel/internal/application"
	"github.com/ericfisherdev/passpanel/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing or malformed secret key).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"master_key_path", cfg.MasterKeyPath,
		"session_ttl", cfg.SessionTTL,
		"reveal_passwords", cfg.RevealPasswords,
		"metrics", cfg.MetricsEnabled,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("migrations complete")

	// 5. Wire adapters.
	cipher, err := cipheradapter.NewAESGCM(cfg.SecretKey)
	if err != nil {
		return err
	}
	credentialStore := sqliteadapter.NewCredentialRepo(db)
	masterKeyStore := keyfile.NewStore(cfg.MasterKeyPath)

	// 6. Application services.
	vault := application.NewVaultService(credentialStore, cipher)
	gate := application.NewGate(masterKeyStore)
	sessions, err := application.NewSessions(cfg.SessionTTL)
	if err != nil {
		return err
	}

	configured, err := gate.Configured(ctx)
	if err != nil {
		return err
	}

	// 7. HTTP routes: health and metrics, then the GUI.
	var metrics *httphandler.Metrics
	if cfg.MetricsEnabled {
		metrics = httphandler.NewMetrics()
	}
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(metrics, logger))

	webHandler := webhandler.NewHandler(vault, gate, sessions, cfg.RevealPasswords, logger)
	webhandler.RegisterRoutes(mux, webHandler)

	handler := httphandler.ApplyMiddleware(mux, logger, metrics)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 8. Print the startup banner.
	printBanner(cfg, configured)

	// 9. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func printBanner(cfg *config.Config, configured bool) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Println("\n    My Password Manager")
	green.Print("    ▶ ")
	fmt.Printf("Open:      http://%s/\n", cfg.ListenAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.DBPath)
	if !configured {
		yellow.Print("    ! ")
		fmt.Println("No master password yet; the first visit asks you to set one.")
	}
	if cfg.RevealPasswords {
		yellow.Print("    ! ")
		fmt.Println("Passwords are shown in plain text.")
	}
	fmt.Println()
}
