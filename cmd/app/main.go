package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/bidbazaar/auction-engine/pkg/auction"
	"github.com/bidbazaar/auction-engine/pkg/config"
	"github.com/bidbazaar/auction-engine/pkg/events"
	"github.com/bidbazaar/auction-engine/pkg/handlers"
	"github.com/bidbazaar/auction-engine/pkg/middleware"
	"github.com/bidbazaar/auction-engine/pkg/storage"
	"github.com/bidbazaar/auction-engine/pkg/storage/dynamo"
	"github.com/bidbazaar/auction-engine/pkg/storage/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run owns the server lifecycle so deferred cleanup always executes,
// whichever path exits.
func run() error {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	store, cleanup, err := buildStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer cleanup()

	publisher, err := buildPublisher(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	engine := auction.New(store, publisher, logger)
	handler := handlers.NewApiHandler(engine)

	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(logger))
	router.Mount("/", handler.Routes())

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s (backend: %s)", cfg.HTTPAddr, cfg.StorageBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildStore selects the storage backend from configuration.
func buildStore(cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil

	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg)
		store := dynamo.New(client, cfg.ProductsTable, cfg.BidsTable, cfg.SalesTable, cfg.CountersTable)
		return store, func() {}, nil

	default:
		return nil, nil, errors.New("unknown STORAGE_BACKEND: " + cfg.StorageBackend)
	}
}

// buildPublisher wires SQS when a queue is configured, no-op otherwise.
func buildPublisher(cfg config.Config) (events.Publisher, error) {
	if cfg.SQSQueueURL == "" {
		return &events.NoOpPublisher{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	return events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SQSQueueURL), nil
}
