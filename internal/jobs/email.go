package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sagniknandigit/internship-management/pkg/mail"
)

// EmailHandler sends mail.Message payloads. Disabled delivery is logged and
// counted as done.
func EmailHandler(s mail.Sender, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, j *Job) error {
		var m mail.Message
		if err := json.Unmarshal(j.Payload, &m); err != nil {
			return fmt.Errorf("%w: decode email payload: %v", ErrPermanent, err)
		}
		err := s.Send(ctx, m)
		if errors.Is(err, mail.ErrDisabled) {
			logger.Info("email disabled, skipping", "to", m.To, "subject", m.Subject)
			return nil
		}
		return err
	}
}

// EnqueueEmail schedules a notification. A nil enqueuer drops it.
func EnqueueEmail(ctx context.Context, enq Enqueuer, m mail.Message) error {
	if enq == nil || len(m.To) == 0 {
		return nil
	}
	_, err := enq.Enqueue(ctx, TypeSendEmail, m, 50, 5)
	return err
}
