package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/memberboard/modules/auth"
	"github.com/dmitrymomot/memberboard/modules/board"
	"github.com/dmitrymomot/memberboard/pkg/config"
	"github.com/dmitrymomot/memberboard/pkg/email"
	"github.com/dmitrymomot/memberboard/pkg/httpserver"
	"github.com/dmitrymomot/memberboard/pkg/logger"
	mongoconn "github.com/dmitrymomot/memberboard/pkg/mongo"
	redisconn "github.com/dmitrymomot/memberboard/pkg/redis"
	"github.com/dmitrymomot/memberboard/pkg/replay"
	"github.com/dmitrymomot/memberboard/pkg/token"
	"github.com/dmitrymomot/memberboard/storage/mongodb"
)

type appConfig struct {
	Logger logger.Config
	Server httpserver.Config
	Mongo  mongoconn.Config
	Redis  redisconn.Config
	Email  email.Config
	Auth   auth.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger, logger.WithService("memberboard"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	connectCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	mongoClient, db, err := mongoconn.ConnectDatabase(connectCtx, cfg.Mongo, cfg.Mongo.Database)
	if err != nil {
		return fmt.Errorf("mongodb connection failed: %w", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error("mongodb disconnect failed", logger.Error(err))
		}
	}()

	users := mongodb.NewUserRepository(db)
	posts := mongodb.NewPostRepository(db)
	if err := users.EnsureIndexes(connectCtx); err != nil {
		return err
	}
	if err := posts.EnsureIndexes(connectCtx); err != nil {
		return err
	}

	healthchecks := []func(context.Context) error{
		mongoconn.Healthcheck(mongoClient),
	}

	// Password reset tokens must be single-use across replicas; the memory
	// guard is only safe for a single instance.
	var guard replay.Guard = replay.NewMemoryGuard()
	if cfg.Redis.ConnectionURL != "" {
		redisClient, err := redisconn.Connect(connectCtx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("redis close failed", logger.Error(err))
			}
		}()
		guard = replay.NewRedisGuard(redisClient)
		healthchecks = append(healthchecks, redisconn.Healthcheck(redisClient))
	}

	var mailer email.EmailSender
	if cfg.Email.PostmarkServerToken != "" {
		mailer, err = email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return fmt.Errorf("postmark client setup failed: %w", err)
		}
	} else {
		log.Warn("postmark token not set, writing emails to disk", slog.String("dir", cfg.Email.DevOutputDir))
		mailer = email.NewDevSender(cfg.Email.DevOutputDir)
	}

	tokens, err := token.NewFromString(cfg.Auth.TokenSecret)
	if err != nil {
		return fmt.Errorf("token service setup failed: %w", err)
	}

	authSvc := auth.NewService(cfg.Auth, users, tokens, guard, mailer, cfg.Email,
		auth.WithLogger(log.With(logger.Component("auth"))),
	)
	boardSvc := board.NewService(posts,
		board.WithLogger(log.With(logger.Component("board"))),
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", httpserver.HealthCheckHandler(log, healthchecks...))
	router.Mount("/auth", authSvc.Handler())

	router.Group(func(r chi.Router) {
		r.Use(authSvc.Middleware())
		r.Use(auth.RequireMember)
		r.Get("/me", authSvc.MeHandler())
		r.Mount("/posts", boardSvc.Handler())
	})

	server := httpserver.NewFromConfig(cfg.Server,
		httpserver.WithLogger(log.With(logger.Component("httpserver"))),
	)
	return server.Run(ctx, router)
}
