package model

// CredentialHash is opaque to this server. It is produced by the external
// auth service and stored here only so the user document is complete.
type User struct {
	ID             uint    `json:"id"    gorm:"primary_key"`
	Username       string  `json:"username" gorm:"unique"`
	Email          string  `json:"email"`
	CredentialHash []byte  `json:"-"`
	CameraID       *string `json:"camera_id"`
	HasLiveAccess  bool    `json:"has_live_access" gorm:"default:false"`
}
