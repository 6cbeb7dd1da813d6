package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/classroom/internal/devserver"
	"github.com/me/classroom/internal/logging"
)

func main() {
	cfg := devserver.DefaultConfig()

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Listen address")
	flag.StringVar(&cfg.Secret, "secret", cfg.Secret, "HMAC secret for issued tokens (or CLASSROOM_DEV_SECRET env)")
	flag.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Lifetime of issued tokens")
	flag.BoolVar(&cfg.Seed, "seed", cfg.Seed, "Load demo accounts and coursework")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text, json)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")

	flag.Parse()

	if *debug {
		*logLevel = "debug"
	}
	if s := os.Getenv("CLASSROOM_DEV_SECRET"); s != "" && !isFlagSet("secret") {
		cfg.Secret = s
	}

	logger := logging.NewLogger(logging.ParseLevel(*logLevel), *logFormat)

	srv, err := devserver.New(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create server: %v\n", err)
		os.Exit(1)
	}
	if cfg.Seed {
		logger.Info("demo accounts ready",
			"emails", []string{devserver.SeedAdminEmail, devserver.SeedTeacherEmail, devserver.SeedStudentEmail},
			"shared_password", devserver.SeedPassword)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
