package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	auth "github.com/goliatone/go-userauth"
	"github.com/goliatone/go-userauth/middleware/authware"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg, err := loadConfig()

	level := glog.Info
	if cfg != nil && cfg.Debug {
		level = glog.Trace
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("userauthd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	if err != nil {
		lgr.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(cfg.DatabaseDSN)
	if err != nil {
		lgr.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := auth.NewUsersRepository(db)

	if err := auth.CreateSchema(ctx, db); err != nil {
		lgr.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	if err := seedAccounts(ctx, users, cfg); err != nil {
		lgr.Error("failed to seed accounts", "error", err)
		os.Exit(1)
	}

	tokens, err := auth.NewTokenService(
		[]byte(cfg.Auth.GetSigningSecret()),
		cfg.Auth.GetTokenTTL(),
		cfg.Auth.GetIssuer(),
		lgr.GetLogger("tokens"),
	)
	if err != nil {
		lgr.Error("failed to build token service", "error", err)
		os.Exit(1)
	}

	provider := auth.NewUserProvider(users).WithLogger(lgr.GetLogger("identity"))
	auther := auth.NewAuthenticator(provider, tokens).WithLogger(lgr.GetLogger("auth"))

	httpAuth, err := auth.NewHTTPAuthenticator(auther, cfg.Auth)
	if err != nil {
		lgr.Error("failed to build http authenticator", "error", err)
		os.Exit(1)
	}

	controller := auth.NewController(users, httpAuth,
		auth.WithControllerLogger(lgr.GetLogger("auth:ctrl")),
	)

	pipeline := authware.New(auth.PipelineConfig(
		cfg.Auth, tokens, provider, lgr.GetLogger("authware"),
	))

	app := fiber.New(fiber.Config{
		AppName:               "userauthd",
		DisableStartupMessage: !cfg.Debug,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowMethods: cfg.CORS.AllowMethods,
	}))

	auth.RegisterRoutes(app, controller, pipeline)

	go func() {
		if err := app.Listen(cfg.ServerAddr); err != nil {
			lgr.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	lgr.Info("serving", "addr", cfg.ServerAddr)

	waitExitSignal()

	if err := app.Shutdown(); err != nil {
		lgr.Error("shutdown error", "error", err)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	auth.RegisterModels(db)
	return db, nil
}

// seedAccounts makes a fresh database usable: the service account backing
// the shared secret trust path, plus an optional first admin.
func seedAccounts(ctx context.Context, users auth.Users, cfg *AppConfig) error {
	if subject := cfg.Auth.GetServiceSubject(); subject != "" {
		service := &auth.User{
			Username:     subject,
			Email:        subject + "@service.invalid",
			PasswordHash: auth.RandomPasswordHash(),
		}
		if _, err := users.Create(ctx, service, auth.RoleService); err != nil {
			if !errors.Is(err, auth.ErrUserAlreadyExists) {
				return err
			}
		}
	}

	seed := cfg.Seed
	if seed.AdminUsername == "" {
		return nil
	}

	hash, err := auth.HashPassword(seed.AdminPassword)
	if err != nil {
		return err
	}

	admin := &auth.User{
		Username:     seed.AdminUsername,
		Email:        seed.AdminEmail,
		PasswordHash: hash,
	}
	if _, err := users.Create(ctx, admin, auth.RoleAdmin, auth.RoleUser); err != nil {
		if !errors.Is(err, auth.ErrUserAlreadyExists) {
			return err
		}
	}

	return nil
}

func waitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
