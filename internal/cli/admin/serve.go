package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fermentlab/insightd/internal/api/handlers"
	"github.com/fermentlab/insightd/internal/config"
	"github.com/fermentlab/insightd/internal/database"
	"github.com/fermentlab/insightd/internal/jobs"
	"github.com/fermentlab/insightd/internal/openai"
	"github.com/fermentlab/insightd/internal/repository"
	"github.com/fermentlab/insightd/internal/server"
	"github.com/fermentlab/insightd/internal/service"
	"github.com/fermentlab/insightd/internal/storage"
	"github.com/fermentlab/insightd/internal/telemetry"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the insightd API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.HasSentry() {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.SampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPoolFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	insightRepo := repository.NewInsightRepository(pool)
	synthRepo := repository.NewSynthesisRepository(pool)
	sessionRepo := repository.NewDailySessionRepository(pool)

	var archiver service.SynthesisArchiver
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archiver = s3Client
	}

	var aiClient *openai.Client
	var embeddingWorker *jobs.Worker
	if cfg.HasOpenAI() {
		aiClient = openai.NewClientWithConfig(openai.Config{
			APIKey:          cfg.OpenAIAPIKey,
			CompletionModel: cfg.CompletionModel,
		})

		embeddingSvc := service.NewEmbeddingService(insightRepo, aiClient)
		embeddingProcessor := jobs.NewEmbeddingWorker(embeddingSvc, service.DefaultEmbeddingBatchSize)
		embeddingWorker = jobs.NewWorker(embeddingProcessor, embedInterval(cfg))
		go embeddingWorker.Start(ctx)
		log.Println("embedding worker started")
	}

	// The repos are typed, the services take interfaces; a nil *openai.Client
	// must not reach them as a non-nil interface value.
	var embedder service.Embedder
	var completion service.CompletionClient
	if aiClient != nil {
		embedder = aiClient
		completion = aiClient
	}

	semanticSvc := service.NewSemanticSearchService(insightRepo, embedder)
	topicSvc := service.NewTopicSearchService(insightRepo)
	classifier := service.NewClassifier(completion)
	querySvc := service.NewQueryService(classifier, semanticSvc, synthRepo, insightRepo, completion, archiver)
	dailySvc := service.NewDailyService(&dailyStore{sessionRepo, insightRepo})

	routerCfg := server.RouterConfig{
		QueryHandler:     handlers.NewQueryHandler(querySvc),
		SearchHandler:    handlers.NewSearchHandler(semanticSvc, topicSvc),
		DailyHandler:     handlers.NewDailyHandler(dailySvc),
		InsightHandler:   handlers.NewInsightHandler(insightRepo),
		SynthesisHandler: handlers.NewSynthesisHandler(synthRepo),
		StatsHandler:     handlers.NewStatsHandler(querySvc),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// dailyStore combines the session and insight repositories into the single
// store the daily service works against.
type dailyStore struct {
	*repository.DailySessionRepository
	*repository.InsightRepository
}

func embedInterval(cfg *config.Config) time.Duration {
	interval, err := time.ParseDuration(cfg.EmbedInterval)
	if err != nil || interval <= 0 {
		log.Printf("invalid embed interval %q, using 30s", cfg.EmbedInterval)
		return 30 * time.Second
	}
	return interval
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
