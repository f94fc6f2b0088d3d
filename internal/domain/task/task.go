// Package task はバックグラウンドジョブの共通型。
package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeEmailSend     Type = "email.send"
	TypeCatalogImport Type = "catalog.import"
)

// キューに積む1件のジョブ
type Task struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// メール送信ジョブ
type EmailPayload struct {
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
	From    string   `json:"from"`
	To      []string `json:"to"`
}

// カタログ取込ジョブ
type ImportPayload struct {
	Source      string `json:"source"`
	ActorUserID int64  `json:"actor_user_id,omitempty"`
}

// payloadをJSONにしてTaskを作る
func New(t Type, payload any) (Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Task{}, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return Task{
		ID:         uuid.NewString(),
		Type:       t,
		Payload:    raw,
		EnqueuedAt: time.Now().UTC(),
	}, nil
}

func (t Task) Decode(v any) error {
	if err := json.Unmarshal(t.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", t.Type, err)
	}
	return nil
}
