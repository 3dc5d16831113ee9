package models

import (
	"encoding/json"
	"time"
)

// StoreRecord is one row of the durable keyed store: an opaque JSON value
// addressed by exact key, optionally tagged with a label for range scans.
type StoreRecord struct {
	Key       string          `db:"key"`
	Label     string          `db:"label"`
	Value     json.RawMessage `db:"value"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}
