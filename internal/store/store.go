package store

import (
	"context"
	"errors"
	"time"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
)

// ErrNotFound is returned when the referenced notification does not exist.
var ErrNotFound = errors.New("notification not found")

// DefaultListLimit bounds List and Subscribe result sets when the caller
// does not specify one.
const DefaultListLimit = 50

// CreateInput is the caller-supplied portion of a new notification record.
// The store assigns the ID and the server-side creation timestamp.
type CreateInput struct {
	UserID       string
	Type         notificationmodels.Type
	Title        string
	Message      string
	Data         map[string]string
	Priority     notificationmodels.Priority
	ScheduledFor *time.Time
}

// Store is the notification persistence contract. Creating a record with no
// ScheduledFor additionally triggers an immediate push send as a best-effort
// side effect; push failure never fails the create.
type Store interface {
	Create(ctx context.Context, in CreateInput) (string, error)
	List(ctx context.Context, userID string, limit int) ([]*notificationmodels.Notification, error)

	// MarkRead sets isRead=true and stamps readAt on the first transition
	// only. Retrying against an already-read record is a no-op.
	MarkRead(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error

	// DeleteAllForUser removes records one at a time, so an interrupted run
	// leaves a well-defined subset removed and the operation can simply be
	// re-invoked until the result set is empty.
	DeleteAllForUser(ctx context.Context, userID string) error

	// Subscribe delivers the full, newest-first result set on every change
	// affecting the user's records.
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription is a live view over a user's notifications. Snapshots is
// closed after Unsubscribe or when the backing stream ends. Unsubscribe is
// an idempotent no-op after the first call.
type Subscription interface {
	Snapshots() <-chan []*notificationmodels.Notification
	Unsubscribe()
}
