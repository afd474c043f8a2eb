package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"kaibot/internal/domain"
)

// Scheduler pushes periodic summary messages to a configured chat. Reports
// are placeholders for now; the schedule and delivery path are final.
type Scheduler struct {
	chatID int64
	sender domain.Sender
	logger *slog.Logger
	cron   *cron.Cron
}

func NewScheduler(chatID int64, sender domain.Sender, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		chatID: chatID,
		sender: sender,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start registers the report jobs and begins the schedule. A zero chat id
// disables reporting entirely.
func (s *Scheduler) Start() error {
	if s.chatID == 0 {
		s.logger.Info("reports disabled, no chat configured")
		return nil
	}

	// Daily summary at 20:00, weekly on Friday at 16:00.
	if _, err := s.cron.AddFunc("0 20 * * *", func() { s.deliver("Daily report generated.") }); err != nil {
		return fmt.Errorf("schedule daily report: %w", err)
	}
	if _, err := s.cron.AddFunc("0 16 * * FRI", func() { s.deliver("Weekly report generated.") }); err != nil {
		return fmt.Errorf("schedule weekly report: %w", err)
	}

	s.cron.Start()
	s.logger.Info("report scheduler started", "chat_id", s.chatID)
	return nil
}

// Stop halts the schedule and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) deliver(text string) {
	if err := s.sender.SendMessage(context.Background(), s.chatID, text); err != nil {
		s.logger.Error("failed to deliver report", "chat_id", s.chatID, "error", err)
	}
}
