package domain

// NotificationKind distinguishes success and failure signals.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a user-visible outcome of an action.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// Notifier is the port for the notification channel exposed to the UI.
type Notifier interface {
	Notify(n Notification)
}
