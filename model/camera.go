package model

// CameraID is chosen by the camera/detection service, not by this server.
type Camera struct {
	CameraID    string `json:"camera_id"   gorm:"primary_key"`
	Description string `json:"description"`
}
