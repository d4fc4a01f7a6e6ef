package models

type CreateNotificationResponse struct {
	ID string `json:"id"`
}
