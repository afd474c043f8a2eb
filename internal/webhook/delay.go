package webhook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"kaibot/internal/domain"
)

// DelayNotice is the holding message sent when processing takes longer than
// the configured threshold.
const DelayNotice = "Processing your request, please wait a moment..."

// ProcessFunc handles one inbound update end to end.
type ProcessFunc func(ctx context.Context, upd domain.Update) error

// NotifyOnDelay wraps fn so that a holding notice is sent to the chat if fn
// has not returned after d. At most one notice is sent per update, and the
// wrapper does not return while the notifier goroutine is still running.
func NotifyOnDelay(d time.Duration, sender domain.Sender, logger *slog.Logger, fn ProcessFunc) ProcessFunc {
	return func(ctx context.Context, upd domain.Update) error {
		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-done:
			case <-ctx.Done():
			case <-timer.C:
				if err := sender.SendMessage(ctx, upd.Message.Chat.ID, DelayNotice); err != nil {
					logger.Warn("failed to send delay notice", "chat_id", upd.Message.Chat.ID, "error", err)
				}
			}
		}()

		err := fn(ctx, upd)
		close(done)
		wg.Wait()
		return err
	}
}
