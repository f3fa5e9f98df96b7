package domain

import "context"

// SlotStore is a key-value persistence layer holding opaque payloads under
// named slots. Implementations can be a local file, SQLite, Postgres, S3,
// or in-memory. Get returns ErrNotFound for a slot that was never written.
type SlotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	Close() error
}

// IntentParser converts raw shell input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string, state EditState) (*Intent, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout or to the shell's scrollback.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
