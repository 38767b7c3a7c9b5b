package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/civicvote/voting-system/docs"
	"github.com/civicvote/voting-system/internal/api"
	"github.com/civicvote/voting-system/internal/core/service"
	"github.com/civicvote/voting-system/internal/infrastructure/config"
	mongodb "github.com/civicvote/voting-system/internal/infrastructure/db/mongo"
	redisdb "github.com/civicvote/voting-system/internal/infrastructure/db/redis"
	"github.com/civicvote/voting-system/internal/infrastructure/http/handlers"
	"github.com/civicvote/voting-system/internal/infrastructure/queue"
	"github.com/civicvote/voting-system/internal/infrastructure/storage"
	"github.com/civicvote/voting-system/internal/pkg/token"
	"github.com/civicvote/voting-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                       Online Voting API
// @version                     1.0
// @description                 User registration, candidate management and one-vote-per-user casting.
// @host                        localhost:8080
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "voting-api",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	userRepo := mongodb.NewUserRepository(db)
	candidateRepo := mongodb.NewCandidateRepository(db)
	if err := mongodb.EnsureIndexes(ctx, userRepo, candidateRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	store := storage.NewLocalStore(cfg.Uploads.Dir, cfg.Uploads.MaxImageBytes)
	if err := store.EnsureDir(); err != nil {
		log.Fatal().Err(err).Msg("failed to prepare upload directory")
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	janitor := queue.NewJanitor(cfg.Uploads.JanitorWorkers, store, log.With().Str("component", "janitor").Logger())
	janitor.Start(janitorCtx)

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, tokens, cfg.BcryptCost, log)
	candidateService := service.NewCandidateService(candidateRepo, userRepo, store, janitor, log)

	e := api.NewRouter(api.Deps{
		Users:         userService,
		Candidates:    candidateService,
		UserFinder:    userRepo,
		Tokens:        tokens,
		UploadLimiter: redisdb.NewUploadLimiter(rdb, cfg.Uploads.PerHour),
		Readiness: []handlers.Dependency{
			{Name: "mongodb", Check: mongodb.Pinger{Client: client}.Ping},
			{Name: "redis", Check: redisdb.Pinger{Client: rdb}.Ping},
			{Name: "uploads", Check: store.Writable},
		},
		UploadDir:     cfg.Uploads.Dir,
		PublicBaseURL: cfg.PublicBaseURL,
		MaxImageBytes: cfg.Uploads.MaxImageBytes,
		Log:           log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting voting api")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("listen failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Pending removals are dropped; the files stay on disk.
	stopJanitor()
	janitor.Wait()

	log.Info().Msg("server exited")
}
