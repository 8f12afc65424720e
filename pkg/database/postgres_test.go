package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ecg-pomodoro/backend/pkg/config"
)

func connect(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	// Skip if DATABASE_URL is not set
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestNew(t *testing.T) {
	db := connect(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		t.Errorf("Failed to ping database: %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	db := connect(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	if !status.Healthy {
		t.Error("Expected healthy status")
	}
	if status.Stats.MaxConns <= 0 {
		t.Errorf("Expected positive MaxConns, got %d", status.Stats.MaxConns)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Enabled: true,
			URL:     "://not-a-url",
		},
	}

	if _, err := New(cfg); err == nil {
		t.Error("Expected error for invalid database URL")
	}
}
