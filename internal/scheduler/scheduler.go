package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/config"
	"github.com/mamadbah2/pantry/internal/domain/models"
)

const publishTimeout = 2 * time.Minute

// Publisher produces and distributes one inventory report.
type Publisher interface {
	Publish(ctx context.Context) (models.InventoryReport, error)
}

// Scheduler runs the inventory report on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	publisher Publisher
	logger    *zap.Logger
}

// NewScheduler creates a scheduler for cfg. It returns nil when no schedule
// is configured; a nil Scheduler is safe to Start and Stop.
func NewScheduler(cfg config.ReportingConfig, publisher Publisher, logger *zap.Logger) (*Scheduler, error) {
	if cfg.CronSchedule == "" {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	// Standard 5-field parser: min, hour, dom, month, dow.
	c := cron.New(cron.WithLocation(location))

	s := &Scheduler{
		cron:      c,
		schedule:  cfg.CronSchedule,
		publisher: publisher,
		logger:    logger,
	}

	if _, err := c.AddFunc(cfg.CronSchedule, s.publishReport); err != nil {
		return nil, fmt.Errorf("schedule report %q: %w", cfg.CronSchedule, err)
	}

	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	if s == nil {
		return
	}
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running report to finish.
func (s *Scheduler) Stop() {
	if s == nil {
		return
	}
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) publishReport() {
	s.logger.Info("publishing inventory report")
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	report, err := s.publisher.Publish(ctx)
	if err != nil {
		s.logger.Error("failed to publish inventory report", zap.Error(err))
		return
	}
	s.logger.Info("inventory report published", zap.Int("items", report.ItemCount))
}
