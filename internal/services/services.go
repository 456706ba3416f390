// Package services orchestrates domain operations across the store and
// the notification queue.
package services

import (
	"context"
	"errors"

	"kasirpos/internal/amqp"
)

var (
	ErrInsufficientPayment = errors.New("customer payment below total")
	ErrOverpayment         = errors.New("payment exceeds outstanding amount")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnsupportedSnapshot = errors.New("unsupported backup version")
)

// NotificationPublisher is the slice of the AMQP client the services
// need. A nil publisher disables notifications.
type NotificationPublisher interface {
	PublishPasswordReset(ctx context.Context, msg amqp.PasswordResetMessage) error
	PublishBackupCreated(ctx context.Context, msg amqp.BackupCreatedMessage) error
}
