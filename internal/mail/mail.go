// Package mail delivers transactional email. The service never talks SMTP
// itself: messages are either logged (development) or queued on Redis for
// the worker that owns delivery.
package mail

import (
	"context"
	"log/slog"

	"github.com/docuchat/docuchat/pkg/slogx"
)

const (
	SubjectVerifyEmail   = "Verify your DocuChat email"
	SubjectResetPassword = "Reset your DocuChat password"
	SubjectInvitation    = "You are invited to DocuChat"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Recorder counts dispatch outcomes. *metrics.Metrics satisfies it.
type Recorder interface {
	Mail(result string)
}

// Dispatch sends msg and swallows the error. Mail is best effort: a failed
// send never fails the request that triggered it.
func Dispatch(ctx context.Context, sender Sender, rec Recorder, msg Message) {
	if sender == nil {
		return
	}

	if err := sender.Send(ctx, msg); err != nil {
		slogx.FromContext(ctx).Warn("failed to dispatch mail",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.Any("error", err),
		)
		if rec != nil {
			rec.Mail("error")
		}
		return
	}

	if rec != nil {
		rec.Mail("ok")
	}
}

// LogSender writes the recipient and subject to the log. The body carries
// live tokens and is never logged.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	l := s.Logger
	if l == nil {
		l = slogx.FromContext(ctx)
	}
	l.Info("mail queued (log sender)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
