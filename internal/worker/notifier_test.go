package worker

import (
	"context"
	"strings"
	"testing"

	"kasirpos/internal/amqp"
	"kasirpos/internal/mail"
)

func TestHandlePasswordReset(t *testing.T) {
	mailer := mail.NewMemoryMailer()
	n := NewNotifier(mailer)

	env, err := amqp.NewEnvelope(amqp.TypePasswordReset, amqp.PasswordResetMessage{
		UserID:       "u1",
		Email:        "kasir@example.com",
		Name:         "Budi",
		TempPassword: "sementara-99",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := n.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}

	sent, ok := mailer.Last()
	if !ok {
		t.Fatal("no mail sent")
	}
	if sent.To != "kasir@example.com" {
		t.Fatalf("to = %q", sent.To)
	}
	if !strings.Contains(sent.Body, "sementara-99") || !strings.Contains(sent.Body, "Budi") {
		t.Fatalf("body = %q", sent.Body)
	}
}

func TestHandleBackupCreated(t *testing.T) {
	mailer := mail.NewMemoryMailer()
	n := NewNotifier(mailer)

	env, err := amqp.NewEnvelope(amqp.TypeBackupCreated, amqp.BackupCreatedMessage{BackupID: "b1", TotalRecords: 9})
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Handle(context.Background(), env); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mailer.Sent) != 0 {
		t.Fatal("backup notification should not send mail")
	}
}

func TestHandleUnknownType(t *testing.T) {
	n := NewNotifier(mail.NewMemoryMailer())

	env := &amqp.Envelope{Type: "mystery", Data: []byte(`{}`)}
	if err := n.Handle(context.Background(), env); err != nil {
		t.Fatalf("unknown type should be dropped, got %v", err)
	}
}
