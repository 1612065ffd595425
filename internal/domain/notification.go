package domain

import "time"

// NotificationKind tags why a notification was produced.
type NotificationKind string

const (
	NotificationKindAssignment NotificationKind = "ASIGNACION"
	NotificationKindUrgency    NotificationKind = "URGENCIA"
	NotificationKindEscalation NotificationKind = "ESCALADA"
	NotificationKindRejection  NotificationKind = "RECHAZO"
	NotificationKindComment    NotificationKind = "COMENTARIO"
	NotificationKindReminder   NotificationKind = "RECORDATORIO"
)

// Notification is created by the lifecycle engine as a side effect. Only the
// read flag is mutable afterward, and only by the recipient.
type Notification struct {
	ID         string
	UserID     string
	IncidentID string
	Kind       NotificationKind
	Read       bool
	CreatedAt  time.Time
}
