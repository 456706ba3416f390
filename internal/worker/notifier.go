// Package worker consumes queued notifications and delivers them.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kasirpos/internal/amqp"
	"kasirpos/internal/mail"
)

// Notifier handles notification messages consumed from the queue.
type Notifier struct {
	mailer mail.Mailer
}

func NewNotifier(mailer mail.Mailer) *Notifier {
	return &Notifier{mailer: mailer}
}

// Handle dispatches a single envelope by type. Unknown types are
// dropped with a warning so old messages never wedge the queue.
func (n *Notifier) Handle(ctx context.Context, env *amqp.Envelope) error {
	switch env.Type {
	case amqp.TypePasswordReset:
		var msg amqp.PasswordResetMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return n.handlePasswordReset(ctx, msg)
	case amqp.TypeBackupCreated:
		var msg amqp.BackupCreatedMessage
		if err := env.Decode(&msg); err != nil {
			return err
		}
		return n.handleBackupCreated(ctx, msg)
	default:
		slog.WarnContext(ctx, "Dropping message of unknown type", "message_type", env.Type)
		return nil
	}
}

func (n *Notifier) handlePasswordReset(ctx context.Context, msg amqp.PasswordResetMessage) error {
	slog.InfoContext(ctx, "Processing password reset notification",
		"user_id", msg.UserID)

	subject := "Password sementara kasir POS"
	body := fmt.Sprintf(
		"Halo %s,\n\n"+
			"Password akun kamu sudah direset. Password sementara:\n\n"+
			"    %s\n\n"+
			"Segera login dan ganti password ini.\n",
		msg.Name, msg.TempPassword)

	if err := n.mailer.Send(ctx, msg.Email, subject, body); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	slog.InfoContext(ctx, "Password reset mail sent", "user_id", msg.UserID)
	return nil
}

func (n *Notifier) handleBackupCreated(ctx context.Context, msg amqp.BackupCreatedMessage) error {
	slog.InfoContext(ctx, "Backup export recorded",
		"backup_id", msg.BackupID,
		"record_count", msg.TotalRecords)
	return nil
}
