package reminder

import (
	"context"
	"errors"
)

// Permission is the notification permission state.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// ErrPermissionNotGranted is returned when a dispatch is attempted without permission.
var ErrPermissionNotGranted = errors.New("notification permission not granted")

// ParsePermission maps a stored value back to a Permission; unknown values are PermissionDefault.
func ParsePermission(s string) Permission {
	switch Permission(s) {
	case PermissionGranted, PermissionDenied:
		return Permission(s)
	}

	return PermissionDefault
}

// Notification is the payload of a dispatch. Notifications sharing a Tag replace each other.
type Notification struct {
	Body string
	Tag  string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Dispatch(title string, n Notification) error
}

// SendTest dispatches a test notification so the user can confirm delivery works.
func SendTest(n Notifier) error {
	if n.Permission() != PermissionGranted {
		return ErrPermissionNotGranted
	}

	return n.Dispatch("Test notification", Notification{
		Body: "If you can see this, reminders will reach you too.",
	})
}
