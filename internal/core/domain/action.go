package domain

import "encoding/json"

// QueuedAction represents a mutation that could not reach the backend and
// is waiting for replay.
type QueuedAction struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt int64           `json:"enqueued_at"` // unix millis
	Attempts   int             `json:"attempts"`
}
