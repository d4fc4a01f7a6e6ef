package models

type RegisterDeviceResponse struct {
	PushEnabled bool   `json:"push_enabled"`
	TokenID     string `json:"token_id,omitempty"`
}
