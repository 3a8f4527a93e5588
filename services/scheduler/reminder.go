package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/notice"
)

// ReminderScheduler periodically re-mails pending notices that asked for
// reminders, on the cron spec from the configuration.
type ReminderScheduler struct {
	cronEngine *cron.Cron
	noticeSvc  *notice.Service
	logger     core.Logger
	cronSpec   string
}

func NewReminderScheduler(conf *core.Config, noticeSvc *notice.Service, logger core.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine: cron.New(),
		noticeSvc:  noticeSvc,
		logger:     logger,
		cronSpec:   conf.Reminder.CronSpec,
	}
}

func (s *ReminderScheduler) Start() error {
	if _, err := s.cronEngine.AddFunc(s.cronSpec, s.run); err != nil {
		return errors.Wrap(err, "adding reminder cron job")
	}
	s.cronEngine.Start()
	s.logger.Info(fmt.Sprintf("reminder scheduler started (spec %q)", s.cronSpec))
	return nil
}

func (s *ReminderScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.noticeSvc.ProcessDueReminders(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("processing due reminders: %v", err), err)
	}
}

// Stop waits for any running job to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("reminder scheduler stopped")
}
