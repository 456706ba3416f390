package amqp

import (
	"testing"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(TypePasswordReset, PasswordResetMessage{
		UserID:       "u1",
		Email:        "kasir@example.com",
		Name:         "Kasir",
		TempPassword: "temp-1234",
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if env.Timestamp.IsZero() {
		t.Fatal("envelope timestamp should be set")
	}

	body, err := env.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	parsed, err := EnvelopeFromJSON(body)
	if err != nil {
		t.Fatalf("EnvelopeFromJSON: %v", err)
	}
	if parsed.Type != TypePasswordReset {
		t.Fatalf("type = %q", parsed.Type)
	}

	var msg PasswordResetMessage
	if err := parsed.Decode(&msg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.UserID != "u1" || msg.TempPassword != "temp-1234" {
		t.Fatalf("payload = %+v", msg)
	}
}

func TestEnvelopeFromJSON_Invalid(t *testing.T) {
	if _, err := EnvelopeFromJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := EnvelopeFromJSON([]byte(`{"data":{}}`)); err == nil {
		t.Error("expected error for missing type")
	}
}

func TestBackupCreatedEnvelope(t *testing.T) {
	env, err := NewEnvelope(TypeBackupCreated, BackupCreatedMessage{BackupID: "b1", TotalRecords: 42})
	if err != nil {
		t.Fatal(err)
	}

	var msg BackupCreatedMessage
	if err := env.Decode(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.BackupID != "b1" || msg.TotalRecords != 42 {
		t.Fatalf("payload = %+v", msg)
	}
}
