package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bankjademk11/qwen-odg/internal/api"
	"github.com/bankjademk11/qwen-odg/internal/config"
	"github.com/bankjademk11/qwen-odg/internal/db"
	"github.com/bankjademk11/qwen-odg/internal/localstore"
	"github.com/bankjademk11/qwen-odg/internal/web"
)

func main() {
	fs := flag.NewFlagSet("odgpos", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var addr string
	fs.StringVar(&addr, "addr", "", "")
	fs.StringVar(&addr, "a", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var migrate bool
	fs.BoolVar(&migrate, "migrate", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: odgpos [flags]

Flags:
  -c, -config <path>      YAML config file (default: ./config.yaml if present)
  -a, -addr <host:port>   listen address (default: :8004)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -migrate                create missing ERP tables and indexes, then serve
  -h, -help               show this help and exit

Environment:
  DATABASE_URL or ODG_DATABASE_URL   ERP PostgreSQL connection string (required)
  ODG_<SECTION>_<KEY>                overrides any config key, e.g. ODG_AUTH_REQUIRE_AUTH=true
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logPath != "" {
		cfg.Log.File = logPath
	}

	closeLog, err := setupLogger(cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(cfg, migrate); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config, migrate bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()

	erp, err := db.OpenPostgres(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	// Closed only after the HTTP server has drained.
	defer func() {
		slog.Info("closing database pool")
		erp.Close()
	}()
	slog.Info("erp database ready", "max_conns", cfg.Database.MaxConns)

	if migrate {
		if err := db.EnsureERPSchema(ctx, erp.DB); err != nil {
			return fmt.Errorf("ensuring erp schema: %w", err)
		}
		slog.Info("erp schema ensured")
	}

	local, err := db.OpenLocal(cfg.Local.Path)
	if err != nil {
		return err
	}
	defer local.Close()

	if err := db.EnsureLocalSchema(local); err != nil {
		return fmt.Errorf("ensuring local schema: %w", err)
	}
	slog.Info("local database ready", "path", cfg.Local.Path)

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = localstore.GetJWTSecret(ctx, local)
		if err != nil {
			return fmt.Errorf("loading jwt secret: %w", err)
		}
	}

	pages, err := web.NewRouter(erp.DB)
	if err != nil {
		return fmt.Errorf("setting up page router: %w", err)
	}

	handler := api.NewRouter(api.Options{
		ERP:            erp.DB,
		Local:          local,
		JWTSecret:      jwtSecret,
		RequireAuth:    cfg.Auth.RequireAuth,
		TokenTTL:       cfg.Auth.TokenTTL,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MediaBaseURL:   cfg.Media.BaseURL,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		Pages:          pages,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	drained := make(chan struct{})

	go func() {
		defer close(drained)
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Server.Addr, "require_auth", cfg.Auth.RequireAuth)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-drained
	slog.Info("server stopped")
	return nil
}
