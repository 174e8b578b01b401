package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/semaphore"

	"quiz-capture-service/internal/ai"
	"quiz-capture-service/internal/app"
	"quiz-capture-service/internal/broadcast"
	"quiz-capture-service/internal/config"
	"quiz-capture-service/internal/infra/memory"
	pgstore "quiz-capture-service/internal/infra/postgres"
	transport "quiz-capture-service/internal/transport/http"
)

const defaultMaxInflight = 8

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz capture server",
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

	serverCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	var (
		configStore app.ConfigStore
		subStore    app.SubmissionStore
		quizStore   app.QuizStore
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		configStore = pgstore.NewConfigStore(pool)
		subStore = pgstore.NewSubmissionStore(pool)
		quizStore = pgstore.NewQuizStore(pool)
	} else {
		log.Printf("no postgres url configured, using in-memory stores")
		configStore = memory.NewConfigStore()
		subStore = memory.NewSubmissionStore()
		quizStore = memory.NewQuizStore()
	}

	hub := broadcast.NewHub()
	var notifier app.Broadcaster = hub
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		relay := broadcast.NewRelay(hub, redisClient, cfg.Redis.Channel)
		go relay.Run(serverCtx)
		notifier = relay
	}

	baseURL := cfg.AI.BaseURL
	if env := os.Getenv("DEEPSEEK_API_URL"); env != "" {
		baseURL = env
	}
	apiKey := cfg.AI.APIKey
	if env := os.Getenv("DEEPSEEK_API_KEY"); env != "" {
		apiKey = env
	}
	solver := ai.NewClient(baseURL, apiKey, cfg.AI.Model)

	maxInflight := cfg.AI.MaxInflight
	if maxInflight <= 0 {
		maxInflight = defaultMaxInflight
	}
	gate := semaphore.NewWeighted(maxInflight)

	configService := app.NewConfigService(configStore)
	if err := configService.InitializeDefaults(ctx); err != nil {
		return err
	}
	submissions := app.NewSubmissionService(subStore, solver, notifier, gate)
	extraction := app.NewExtractionService(quizStore, configService, solver, notifier, gate)

	api := transport.NewAPI(submissions, extraction, configService)
	wsHandler := transport.NewWSHandler(hub)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", wsHandler.ServeWS)
	r.Mount("/", api.Routes())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz capture service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
