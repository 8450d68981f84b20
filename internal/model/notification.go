package model

// NotificationKind names what happened in the registry.
type NotificationKind string

const (
	NotificationEventCreated NotificationKind = "event_created"
	NotificationRegistered   NotificationKind = "registered"
)

// Notification is published after a committed create or register so off-chain consumers can follow along.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	EventID   uint64           `json:"event_id"`
	Address   Address          `json:"address"`
	Timestamp int64            `json:"timestamp"`
}
