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

	"github.com/andrewpaige1/cardbox-api/auth"
	"github.com/andrewpaige1/cardbox-api/config"
	"github.com/andrewpaige1/cardbox-api/library"
	"github.com/andrewpaige1/cardbox-api/router"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	// Initialize database connection
	db, err := config.Connect(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	lib := library.New(db, library.Options{})

	if cfg.Audit {
		return audit(lib)
	}

	sessions, err := auth.NewSessions(auth.Options{
		Secret:         cfg.JWTSecret,
		Issuer:         cfg.JWTIssuer,
		Audience:       cfg.JWTAudience,
		TTL:            cfg.TokenTTL,
		CookieName:     cfg.Cookie.Name,
		CookieDomain:   cfg.Cookie.Domain,
		CookieSecure:   cfg.Cookie.CookieSecure,
		CookieSameSite: cfg.Cookie.SameSite,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler: router.NewRouter(lib, sessions, router.Options{
			CORSOrigins:    cfg.CORSOrigins,
			RequestTimeout: cfg.RequestTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr, "database", cfg.DatabaseType, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// audit reports cards whose reference count disagrees with the set slots
// holding them.
func audit(lib *library.Library) error {
	found, err := lib.Audit(context.Background())
	if err != nil {
		return err
	}
	for _, d := range found {
		slog.Warn("reference count drift", "card", d.CardID, "recorded", d.Recorded, "actual", d.Actual)
	}
	if len(found) > 0 {
		return fmt.Errorf("%d cards have inconsistent reference counts", len(found))
	}
	slog.Info("reference counts consistent")
	return nil
}
