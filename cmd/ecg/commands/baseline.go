package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ecg-pomodoro/backend/internal/baseline"
	"github.com/ecg-pomodoro/backend/internal/scheduler"
	"github.com/ecg-pomodoro/backend/internal/store"
	"github.com/ecg-pomodoro/backend/pkg/database"
)

// baselineCmd represents the baseline command
var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "사용자 기준치 갱신 워커",
	Long: `저장된 세션 요약으로 사용자별/시간대별 기준치(평균 HR, 평균 SDNN)를 갱신합니다.

기본은 크론 워커(매시 5분)로 동작하며, --once는 즉시 1회 실행 후 종료합니다.
DB_ENABLED=true 가 필요합니다.

Example:
  go run ./cmd/ecg baseline
  go run ./cmd/ecg baseline --once --user u-1
  go run ./cmd/ecg baseline --lookback 720h`,
	RunE: runBaseline,
}

var (
	baselineOnce     bool
	baselineLookback time.Duration
	baselineUser     string
)

func init() {
	rootCmd.AddCommand(baselineCmd)

	baselineCmd.Flags().BoolVar(&baselineOnce, "once", false, "즉시 1회 실행 후 종료")
	baselineCmd.Flags().DurationVar(&baselineLookback, "lookback", baseline.DefaultLookback, "집계 기간")
	baselineCmd.Flags().StringVar(&baselineUser, "user", "", "--once 실행 후 이 사용자의 기준치 출력")
}

func runBaseline(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled {
		return fmt.Errorf("baseline worker requires DB_ENABLED=true")
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.EnsureSchema(ctx, db.Pool); err != nil {
		return err
	}
	repo := store.NewSummaryRepository(db.Pool)

	sched := scheduler.New(log, scheduler.WithRetry(2, 30*time.Second))
	if err := sched.AddJob(baseline.NewJob(repo, baselineLookback, log)); err != nil {
		return err
	}

	if baselineOnce {
		result, err := sched.RunNow("user_baseline")
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("baseline job failed after %d attempts: %s", result.Attempts, result.Error)
		}
		PrintSuccess(fmt.Sprintf("Baselines refreshed in %v", result.Duration))

		if baselineUser != "" {
			baselines, err := repo.GetBaselines(ctx, baselineUser)
			if err != nil {
				return err
			}
			return PrintBaselineTable(baselines)
		}
		return nil
	}

	sched.Start()
	fmt.Println("✅ Baseline worker started (Ctrl+C to stop)")

	<-ctx.Done()
	sched.Stop()

	for name, stats := range sched.GetJobStats() {
		log.WithFields(map[string]interface{}{
			"job":          name,
			"total_runs":   stats.TotalRuns,
			"success_rate": stats.SuccessRate,
		}).Info("Job stats")
	}
	return nil
}
