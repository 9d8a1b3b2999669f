package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hongminglow/pizza-be/internal/auth"
	"github.com/hongminglow/pizza-be/internal/config"
	"github.com/hongminglow/pizza-be/internal/factory"
	"github.com/hongminglow/pizza-be/internal/logger"
	"github.com/hongminglow/pizza-be/internal/server"
	"github.com/hongminglow/pizza-be/internal/storage"
	"github.com/hongminglow/pizza-be/internal/storage/memory"
	postgres "github.com/hongminglow/pizza-be/internal/storage/postgres"
	redisstore "github.com/hongminglow/pizza-be/internal/storage/redis"
)

func main() {
	app := &cli.App{
		Name:  "pizza-be",
		Usage: "JWT Pizza ordering service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file to load before reading configuration",
				Value: ".env",
			},
		},
		Before: func(c *cli.Context) error {
			loadLocalEnv(c.String("env-file"))
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create the Postgres schema and exit",
				Action: migrate,
			},
			{
				Name:  "add-admin",
				Usage: "create an admin account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Value: "admin"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: addAdmin,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadLocalEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("no %s file found; relying on existing environment", path)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(lg)
	return cfg, lg, nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.StoragePostgres {
		return postgres.NewStore(ctx, cfg.DatabaseURL)
	}
	return memory.New(), nil
}

func serve(c *cli.Context) error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx := c.Context
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()

	fc := factory.NewHTTPClient(cfg.FactoryURL, cfg.FactoryAPIKey, cfg.FactoryTimeout)
	deps := server.Deps{
		Store:   store,
		Factory: fc,
		Logger:  lg,
	}
	if cfg.RedisAddr != "" {
		sessions, err := redisstore.NewSessionStore(ctx, redisstore.Options{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.JWTTTL,
		})
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		defer sessions.Close()
		deps.Sessions = sessions
	}

	if cfg.BootstrapAdmin() {
		admin, created, err := auth.EnsureAdmin(ctx, store, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return err
		}
		if created {
			lg.Info("bootstrap admin created", zap.Int64("user_id", admin.ID), zap.String("email", admin.Email))
		}
	}

	srv := server.New(cfg, deps)
	errCh := make(chan error, 1)
	go func() {
		lg.Info("pizza service listening",
			zap.String("addr", cfg.HTTPAddress()),
			zap.String("storage", cfg.StorageDriver),
			zap.String("factory", fc.BaseURL()),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		lg.Warn("graceful shutdown error", zap.Error(err))
	}
	return nil
}

func migrate(c *cli.Context) error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return errors.New("migrate requires STORAGE_DRIVER=postgres")
	}
	// NewStore migrates on connect.
	store, err := postgres.NewStore(c.Context, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	store.Close()
	lg.Info("schema is up to date")
	return nil
}

func addAdmin(c *cli.Context) error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}
	if cfg.StorageDriver != config.StoragePostgres {
		return errors.New("add-admin requires STORAGE_DRIVER=postgres; the memory store does not outlive the process")
	}
	store, err := postgres.NewStore(c.Context, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	admin, created, err := auth.EnsureAdmin(c.Context, store, c.String("name"), c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	if !created {
		lg.Warn("user already exists; roles left unchanged", zap.String("email", admin.Email))
		return nil
	}
	lg.Info("admin created", zap.Int64("user_id", admin.ID), zap.String("email", admin.Email))
	return nil
}
