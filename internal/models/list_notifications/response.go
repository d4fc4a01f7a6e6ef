package models

import (
	notificationmodels "io.revoapps.revofit/internal/models/notification"
)

type ListNotificationsResponse struct {
	Notifications []*notificationmodels.Notification `json:"notifications"`
	UnreadCount   int                                `json:"unread_count"`
}
