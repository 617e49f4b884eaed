package model

import "time"

const (
	DetectionGun   = "gun"
	DetectionKnife = "knife"

	AlertActive       = "active"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
)

type Alert struct {
	ID            uint      `json:"id"             gorm:"primary_key"`
	CameraID      string    `json:"camera_id"      gorm:"index"`
	Timestamp     time.Time `json:"timestamp"`
	Confidence    float64   `json:"confidence"`
	DetectionType string    `json:"detection_type"`
	Status        string    `json:"status"         gorm:"default:'active'"`
	ImageBase64   string    `json:"image_base64"   gorm:"type:longtext"`
}
