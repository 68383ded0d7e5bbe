package notify

import (
	"context"
	"log/slog"

	"github.com/yli59577/puyuann/pkg/slogx"
)

// LogSender stands in for SMTP when no mail server is configured. It records
// that a message would have been sent but never logs its body.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	l.Info("mail delivery skipped, no smtp configured",
		slog.String("kind", string(msg.Kind)),
		slogx.Email(msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
