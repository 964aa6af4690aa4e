package engine

import "time"

// NotificationKind classifies a notification for the display surface.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyWarning NotificationKind = "warning"
	NotifyInfo    NotificationKind = "info"
	NotifyEthical NotificationKind = "ethical"
)

// Notification is a presentation event produced by a transition. IDs are
// attached at the network boundary so the transition stays deterministic.
type Notification struct {
	Message      string           `json:"message"`
	Kind         NotificationKind `json:"kind"`
	DurationHint time.Duration    `json:"duration_hint"`
}

const (
	durationShort = 3 * time.Second
	durationLong  = 6 * time.Second
)

func notify(kind NotificationKind, msg string, d time.Duration) Notification {
	return Notification{Message: msg, Kind: kind, DurationHint: d}
}
