package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/repository/sheets"
	"github.com/mamadbah2/stockledger/internal/service/reporting"
	"github.com/mamadbah2/stockledger/pkg/clients/webhook"
)

// DigestSource builds the valuation digest.
type DigestSource interface {
	Digest(ctx context.Context, now time.Time) (reporting.Digest, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ReportingConfig
	source   DigestSource
	webhook  webhook.Client
	exporter sheets.Exporter
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. webhookClient and exporter are
// optional; a nil value skips that delivery.
func NewScheduler(cfg config.ReportingConfig, source DigestSource, webhookClient webhook.Client, exporter sheets.Exporter, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	// robfig/cron/v3 default parser is standard cron (5 fields: min, hour, dom, month, dow).
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:     c,
		cfg:      cfg,
		source:   source,
		webhook:  webhookClient,
		exporter: exporter,
		now:      func() time.Time { return time.Now().In(loc) },
		logger:   logger,
	}, nil
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.sendDigest); err != nil {
		return fmt.Errorf("schedule digest %q: %w", s.cfg.CronSchedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunDigest(ctx); err != nil {
		s.logger.Error("digest delivery incomplete", zap.Error(err))
	}
}

// RunDigest builds the digest once and hands it to every configured destination.
// Delivery errors are joined; one failing destination does not block the others.
func (s *Scheduler) RunDigest(ctx context.Context) error {
	s.logger.Info("generating stock digest")

	digest, err := s.source.Digest(ctx, s.now())
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}

	s.logger.Info("stock digest",
		zap.String("date", digest.Date),
		zap.Int("locations", len(digest.Summaries)),
		zap.Int("critical", len(digest.Critical)),
		zap.String("text", digest.Text))

	var errs []error
	if s.webhook != nil {
		msg := webhook.Message{Text: digest.Text, Date: digest.Date, Summaries: digest.Summaries}
		if err := s.webhook.Post(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("post digest: %w", err))
		} else {
			s.logger.Info("digest posted to webhook")
		}
	}

	if s.exporter != nil {
		if err := s.exporter.AppendSummary(ctx, digest.Date, digest.Summaries); err != nil {
			errs = append(errs, fmt.Errorf("export digest: %w", err))
		} else {
			s.logger.Info("digest exported to sheets")
		}
	}

	return errors.Join(errs...)
}
