package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecg-pomodoro/backend/internal/api"
	"github.com/ecg-pomodoro/backend/internal/api/handlers"
	"github.com/ecg-pomodoro/backend/internal/broadcast"
	"github.com/ecg-pomodoro/backend/internal/contracts"
	"github.com/ecg-pomodoro/backend/internal/segment"
	"github.com/ecg-pomodoro/backend/internal/session"
	"github.com/ecg-pomodoro/backend/internal/store"
	"github.com/ecg-pomodoro/backend/pkg/database"
	"github.com/ecg-pomodoro/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 세그먼트 피처 / 세션 요약 엔드포인트 제공
- (DB_ENABLED) 요약 저장 및 조회
- (REDIS_ENABLED) 피처 캐시 + 공유 레이트 리밋
- (MQTT_ENABLED) 요약 MQTT 발행
- WebSocket 요약 스트림

Endpoints:
  GET  /health                        - Health check
  POST /ecg/features                  - 세그먼트 피처 계산
  POST /ecg/pomodoro/end              - 세션 요약 생성
  GET  /api/sessions/{session_id}     - 저장된 요약 조회
  GET  /api/users/{user_id}/sessions  - 사용자 최근 요약
  GET  /api/users/{user_id}/baseline  - 사용자 시간대별 기준치
  GET  /ws/summaries?user_id=         - 요약 스트림

Example:
  go run ./cmd/ecg api
  go run ./cmd/ecg api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== ECG Pomodoro API Server ===")

	// 1. Load config + logger
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Pipeline
	p, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Database (optional)
	var (
		repo     contracts.SummaryRepository
		dbHealth handlers.DBHealthChecker
	)
	if cfg.Database.Enabled {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		if err := store.EnsureSchema(ctx, db.Pool); err != nil {
			return err
		}
		repo = store.NewSummaryRepository(db.Pool)
		dbHealth = db
		log.Info("Connected to database")
	}

	// 4. Redis (optional): feature cache + shared rate limit
	rc, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer rc.Close()

	var processor contracts.SegmentProcessor = p.builder
	if rc.Enabled() {
		cache := redis.NewCache(rc, "ecg:"+p.hash[:12])
		processor = segment.NewCachedProcessor(p.builder, cache, cfg.Redis.FeatureCacheTTL, log)
		log.Info("Feature cache enabled")
	}
	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, redis.NewRateLimiter(rc, "ecg"), log)

	// 5. Publishers
	hub := broadcast.NewHub(cfg.AllowedOrigins, log)
	defer hub.Close()
	publishers := []contracts.SummaryPublisher{hub}

	if cfg.MQTT.Enabled {
		client, err := broadcast.NewMQTTClient(cfg.MQTT, log)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)

		mqttPub := broadcast.NewMQTTPublisher(client, cfg.MQTT.SummaryTopic, log)
		go mqttPub.Start(ctx)
		publishers = append(publishers, mqttPub)
	}

	// 6. Service + router
	svc := session.NewService(p.aggregator, repo, log, publishers...)
	router := api.NewRouter(api.Routes{
		Health:    handlers.NewHealthHandler("ecg-pomodoro", p.builder.Method(), dbHealth),
		ECG:       handlers.NewECGHandler(processor, svc, log),
		Summaries: hub,
	}, api.RouterOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimiter:    limiter,
	}, log)

	// 7. Start server with graceful shutdown
	server := api.New(cfg, log, router)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
