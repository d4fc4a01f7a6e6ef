package models

// RegisterDeviceRequest carries the outcome of the device-side permission
// negotiation. PermissionGranted false (or an empty token) means push is
// unavailable for this device; that is not an error condition.
type RegisterDeviceRequest struct {
	Token             string `json:"token"`
	Platform          string `json:"platform"`
	Timezone          string `json:"timezone"`
	PermissionGranted bool   `json:"permission_granted"`
}
