package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	identity "github.com/souzalabs/go-identity"
)

type appConfig struct {
	identity.AuthConfig
	Addr  string
	DSN   string
	Debug bool
}

func loadConfig() (appConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("IDENTITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":9876")
	v.SetDefault("dsn", "file:identity.db?cache=shared&_pragma=foreign_keys(1)")
	v.SetDefault("access_token_ttl", 900)
	v.SetDefault("refresh_token_ttl", 604800)
	v.SetDefault("debug", false)

	cfg := appConfig{
		AuthConfig: identity.AuthConfig{
			SigningKey:      v.GetString("signing_key"),
			AccessTokenTTL:  v.GetInt("access_token_ttl"),
			RefreshTokenTTL: v.GetInt("refresh_token_ttl"),
			ContextKey:      v.GetString("context_key"),
			AuthScheme:      v.GetString("auth_scheme"),
			TokenLookup:     v.GetString("token_lookup"),
		},
		Addr:  v.GetString("addr"),
		DSN:   v.GetString("dsn"),
		Debug: v.GetBool("debug"),
	}

	if cfg.SigningKey == "" {
		return cfg, identity.ErrNoEmptyString
	}

	return cfg, nil
}

// zeroLogger adapts zerolog to the identity.Logger surface
type zeroLogger struct {
	lgr zerolog.Logger
}

func (l zeroLogger) Debug(format string, args ...any) { l.lgr.Debug().Msgf(format, args...) }
func (l zeroLogger) Info(format string, args ...any)  { l.lgr.Info().Msgf(format, args...) }
func (l zeroLogger) Warn(format string, args ...any)  { l.lgr.Warn().Msgf(format, args...) }
func (l zeroLogger) Error(format string, args ...any) { l.lgr.Error().Msgf(format, args...) }

func main() {
	lgr := zeroLogger{
		lgr: zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("app", "identity-server").
			Logger(),
	}

	cfg, err := loadConfig()
	if err != nil {
		lgr.Error("config error: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		lgr.Error("database error: %v", err)
		os.Exit(1)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if _, err := db.NewCreateTable().
		Model((*identity.User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		lgr.Error("schema error: %v", err)
		os.Exit(1)
	}

	repo := identity.NewRepositoryManager(db)
	repo.MustValidate()

	key, err := identity.DecodeSigningKey(cfg.SigningKey)
	if err != nil {
		lgr.Error("signing key error: %v", err)
		os.Exit(1)
	}

	tokens := identity.NewTokenService(key, lgr)

	credentials := identity.NewCredentials(repo).
		WithLogger(lgr)

	auther := identity.NewAuthenticator(credentials, repo, tokens, cfg).
		WithLogger(lgr).
		WithTokenPersistence(true)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
			AppName:       "identity-server",
		}))
	})

	srv.Router().Use(identity.NewAuthenticationGate(tokens, repo, cfg))

	identity.RegisterAuthRoutes(srv.Router(),
		identity.WithControllerLogger(lgr),
		identity.WithControllerAuthenticator(auther),
		identity.WithControllerRegistrar(credentials),
		identity.WithControllerDebug(cfg.Debug),
	)

	srv.Router().Get("/api/me", func(ctx router.Context) error {
		auth, ok := identity.AuthFromContext(ctx.Context())
		if !ok || !auth.Authenticated {
			return ctx.JSON(http.StatusUnauthorized, identity.ErrorResponse{
				Error: identity.MsgBadCredentials,
			})
		}
		return ctx.JSON(http.StatusOK, auth.Principal)
	}).SetName("me")

	lgr.Info("listening on %s", cfg.Addr)

	srv.Serve(cfg.Addr)

	sig := waitExitSignal()
	lgr.Info("received %s, shutting down", sig)
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
