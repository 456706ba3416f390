package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message types carried on the notifications queue.
const (
	TypePasswordReset = "password_reset"
	TypeBackupCreated = "backup_created"
)

// Envelope wraps every queued message with its type so a single queue
// can carry the whole notification traffic.
type Envelope struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// PasswordResetMessage asks the worker to mail a temporary password to
// the user. The new hash is already stored; the plaintext exists only
// in this message.
type PasswordResetMessage struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	TempPassword string `json:"temp_password"`
}

// BackupCreatedMessage notifies the worker that a backup export was
// produced.
type BackupCreatedMessage struct {
	BackupID     string `json:"backup_id"`
	TotalRecords int    `json:"total_records"`
}

func NewEnvelope(msgType string, payload any) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	return &Envelope{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// ToJSON converts the envelope to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EnvelopeFromJSON creates an envelope from JSON bytes
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.Type == "" {
		return nil, fmt.Errorf("envelope has no type")
	}
	return &e, nil
}

// Decode unmarshals the envelope payload into dst.
func (e *Envelope) Decode(dst any) error {
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
