package domain

// Record is an entity value as delivered by the backend: a flat field map.
// Shallow merges on update operate on these fields.
type Record = map[string]any

// ChangeOp is the kind of change carried by a ChangeEvent.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// ChangeEvent represents one push notification for a reconciled collection.
// Events are transient: consumed immediately, never persisted.
type ChangeEvent struct {
	Op       ChangeOp `json:"op"`
	EntityID string   `json:"entity_id"`
	New      Record   `json:"new,omitempty"`
	Old      Record   `json:"old,omitempty"`
}
