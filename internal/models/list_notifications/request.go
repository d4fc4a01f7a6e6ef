package models

type ListNotificationsRequest struct {
	Limit int `json:"limit"`
}
