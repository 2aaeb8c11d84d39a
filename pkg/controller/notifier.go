package controller

import (
	"context"
	"sync"

	"github.com/matt-steen/remindlist/pkg/db"
	"github.com/matt-steen/remindlist/pkg/reminder"
	"github.com/rs/zerolog/log"
)

// Notifier delivers reminders inside the terminal view. The permission the user gives is kept
// in the Store so it survives restarts.
type Notifier struct {
	store *db.Store

	mu         sync.Mutex
	permission reminder.Permission
	prompt     func(ctx context.Context) (bool, error)
	deliver    func(title string, n reminder.Notification)
}

// NewNotifier loads the saved permission.
func NewNotifier(ctx context.Context, store *db.Store) (*Notifier, error) {
	permission, err := store.LoadPermission(ctx)
	if err != nil {
		return nil, err
	}

	return &Notifier{store: store, permission: permission}, nil
}

// Permission returns the current permission state.
func (n *Notifier) Permission() reminder.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.permission
}

// RequestPermission asks the user, through the attached prompt, whether reminders may be shown.
// Without a prompt, permission is granted.
func (n *Notifier) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	n.mu.Lock()
	prompt := n.prompt
	n.mu.Unlock()

	allowed := true

	if prompt != nil {
		var err error

		allowed, err = prompt(ctx)
		if err != nil {
			return n.Permission(), err
		}
	}

	permission := reminder.PermissionDenied
	if allowed {
		permission = reminder.PermissionGranted
	}

	n.mu.Lock()
	n.permission = permission
	n.mu.Unlock()

	if err := n.store.SavePermission(ctx, permission); err != nil {
		log.Warn().Err(err).Msg("error saving notification permission")
	}

	log.Info().Str("permission", string(permission)).Msg("notification permission changed")

	return permission, nil
}

// Dispatch shows a notification.
func (n *Notifier) Dispatch(title string, notification reminder.Notification) error {
	n.mu.Lock()
	permission, deliver := n.permission, n.deliver
	n.mu.Unlock()

	if permission != reminder.PermissionGranted {
		return reminder.ErrPermissionNotGranted
	}

	log.Info().Str("tag", notification.Tag).Msgf("notification: %s", title)

	if deliver != nil {
		deliver(title, notification)
	}

	return nil
}

func (n *Notifier) attach(
	prompt func(ctx context.Context) (bool, error),
	deliver func(title string, n reminder.Notification),
) {
	n.mu.Lock()
	n.prompt = prompt
	n.deliver = deliver
	n.mu.Unlock()
}
