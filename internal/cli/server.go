package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-backend/internal/app"
	"quiz-backend/internal/config"
	"quiz-backend/internal/infra/memory"
	pgrepo "quiz-backend/internal/infra/postgres"
	rediscache "quiz-backend/internal/infra/redis"
	"quiz-backend/internal/logger"
	transport "quiz-backend/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New("quiz-backend")

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("no JWT secret configured; issued tokens will not verify")
	}

	var (
		categories app.CategoryRepository
		questions  app.QuestionRepository
		results    app.ResultRepository
		users      app.UserRepository
	)

	cacheTTL := config.TTLDuration(cfg.Quiz.CacheTTL, 10*time.Minute)

	var cache app.QuestionCache
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		categories = pgrepo.NewCategoryRepository(pool)
		questionRepo := pgrepo.NewQuestionRepository(pool)
		questions = questionRepo
		results = pgrepo.NewResultRepository(pool)
		users = pgrepo.NewUserRepository(pool)

		if cfg.Redis.Addr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			cache = rediscache.NewQuestionCache(redisClient, questionRepo, cacheTTL)
		} else {
			cache = memory.NewQuestionCache(questionRepo, cacheTTL)
		}
	} else {
		log.Warn("no postgres url configured; running with in-memory storage")
		store := memory.NewStore()
		categories = store
		questions = store
		results = store.Results()
		users = store.Users()
		cache = memory.NewQuestionCache(store, cacheTTL)
		seedDemoAdmin(ctx, store, log)
	}

	uploadService := app.NewUploadService(categories, questions, cache, cfg.Quiz.DefaultTimerMinutes, log)
	quizService := app.NewQuizService(categories, cache, nil)
	resultService := app.NewResultService(categories, cache, results)

	router := transport.NewRouter(transport.RouterDeps{
		Uploads:   uploadService,
		Quizzes:   quizService,
		Results:   resultService,
		Users:     users,
		JWTSecret: cfg.Auth.JWTSecret,
		Log:       log,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting quiz backend")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
