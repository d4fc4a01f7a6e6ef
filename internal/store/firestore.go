package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	notificationmodels "io.revoapps.revofit/internal/models/notification"
)

const notificationsCollection = "notifications"

// Pusher delivers an immediate push for a freshly created notification.
// Push is a best-effort channel; the in-app list is the source of truth.
type Pusher interface {
	PushToUser(ctx context.Context, userID, title, body string, data map[string]string, priority, channel string) error
}

// FirestoreStore persists notifications in the notifications collection.
type FirestoreStore struct {
	client *firestore.Client
	pusher Pusher
	logger *zap.SugaredLogger
}

// NewFirestoreStore creates a store. pusher may be nil, in which case
// creates never trigger a push send.
func NewFirestoreStore(client *firestore.Client, pusher Pusher, logger *zap.SugaredLogger) *FirestoreStore {
	return &FirestoreStore{
		client: client,
		pusher: pusher,
		logger: logger,
	}
}

// Create persists a new record and, when it is immediate (no scheduledFor),
// fires a push send. Push failure is logged and swallowed: the record is
// created and visible in-app regardless of push delivery outcome.
func (s *FirestoreStore) Create(ctx context.Context, in CreateInput) (string, error) {
	if in.Priority == "" {
		in.Priority = notificationmodels.PriorityNormal
	}

	doc := s.client.Collection(notificationsCollection).NewDoc()
	fields := map[string]interface{}{
		"userId":       in.UserID,
		"type":         string(in.Type),
		"title":        in.Title,
		"message":      in.Message,
		"data":         in.Data,
		"isRead":       false,
		"priority":     string(in.Priority),
		"scheduledFor": in.ScheduledFor,
		"createdAt":    firestore.ServerTimestamp,
		"readAt":       nil,
	}

	if _, err := doc.Create(ctx, fields); err != nil {
		return "", fmt.Errorf("failed to create notification: %w", err)
	}

	if in.ScheduledFor == nil && s.pusher != nil {
		data := map[string]string{"notificationId": doc.ID, "type": string(in.Type)}
		for k, v := range in.Data {
			data[k] = v
		}
		if err := s.pusher.PushToUser(ctx, in.UserID, in.Title, in.Message, data, string(in.Priority), channelForType(in.Type)); err != nil {
			s.logger.Warnw("push send failed for new notification",
				"notification_id", doc.ID,
				"user_id", in.UserID,
				"error", err,
			)
		}
	}

	return doc.ID, nil
}

// List returns the user's notifications, newest first.
func (s *FirestoreStore) List(ctx context.Context, userID string, limit int) ([]*notificationmodels.Notification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	docs, err := s.userQuery(userID, limit).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return decodeSnapshots(docs), nil
}

// MarkRead flips isRead inside a transaction so readAt is stamped exactly
// once; a second call observes isRead=true and does nothing.
func (s *FirestoreStore) MarkRead(ctx context.Context, id string) error {
	ref := s.client.Collection(notificationsCollection).Doc(id)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if read, err := snap.DataAt("isRead"); err == nil {
			if b, ok := read.(bool); ok && b {
				return nil
			}
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "isRead", Value: true},
			{Path: "readAt", Value: firestore.ServerTimestamp},
		})
	})
	if err == ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.client.Collection(notificationsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// DeleteAllForUser deletes the full query result set one record at a time.
// If interrupted, re-running converges on the terminal state of zero records.
func (s *FirestoreStore) DeleteAllForUser(ctx context.Context, userID string) error {
	docs, err := s.client.Collection(notificationsCollection).
		Where("userId", "==", userID).
		Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to query notifications for delete: %w", err)
	}

	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete notification %s: %w", doc.Ref.ID, err)
		}
	}
	return nil
}

// Subscribe opens a snapshot listener on the user's feed query. Every
// backend change delivers the full ordered list; intermediate snapshots may
// be coalesced, only the latest pending one is held for the consumer.
func (s *FirestoreStore) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)

	it := s.userQuery(userID, DefaultListLimit).Snapshots(ctx)

	go func() {
		defer close(sub.ch)
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.logger.Warnw("notification subscription ended", "user_id", userID, "error", err)
				}
				return
			}
			docs, err := qs.Documents.GetAll()
			if err != nil {
				s.logger.Warnw("failed to read subscription snapshot", "user_id", userID, "error", err)
				continue
			}
			sub.deliver(decodeSnapshots(docs))
		}
	}()

	return sub, nil
}

func (s *FirestoreStore) userQuery(userID string, limit int) firestore.Query {
	return s.client.Collection(notificationsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit)
}

func decodeSnapshots(docs []*firestore.DocumentSnapshot) []*notificationmodels.Notification {
	items := make([]*notificationmodels.Notification, 0, len(docs))
	for _, doc := range docs {
		var n notificationmodels.Notification
		if err := doc.DataTo(&n); err != nil {
			continue
		}
		n.ID = doc.Ref.ID
		items = append(items, &n)
	}
	return items
}

func channelForType(t notificationmodels.Type) string {
	switch t {
	case notificationmodels.TypeWorkout, notificationmodels.TypeNutrition:
		return "activity"
	case notificationmodels.TypeCoach, notificationmodels.TypeMessage:
		return "messages"
	case notificationmodels.TypeReminder:
		return "reminders"
	case notificationmodels.TypeAchievement:
		return "achievements"
	default:
		return "general"
	}
}
