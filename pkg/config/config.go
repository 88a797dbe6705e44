// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Backend names accepted by STORAGE_BACKEND.
const (
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Config holds configuration knobs for the HTTP server and storage.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	StorageBackend string
	SQLitePath     string

	ProductsTable string
	BidsTable     string
	SalesTable    string
	CountersTable string

	SQSQueueURL string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durenvs(key string, defSec int) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return time.Duration(defSec) * time.Second
	}
	sec, err := strconv.Atoi(v)
	if err != nil {
		return time.Duration(defSec) * time.Second
	}
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		StorageBackend:  getenv("STORAGE_BACKEND", BackendSQLite),
		SQLitePath:      getenv("SQLITE_PATH", "marketplace.db"),
		ProductsTable:   getenv("DYNAMODB_PRODUCTS_TABLE_NAME", "products"),
		BidsTable:       getenv("DYNAMODB_BIDS_TABLE_NAME", "bids"),
		SalesTable:      getenv("DYNAMODB_SALES_TABLE_NAME", "sales"),
		CountersTable:   getenv("DYNAMODB_COUNTERS_TABLE_NAME", "counters"),
		SQSQueueURL:     getenv("SQS_QUEUE_URL", ""),
	}
}
