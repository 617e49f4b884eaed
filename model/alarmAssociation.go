package model

import "time"

type AlarmAssociation struct {
	User           User      `json:"-"               gorm:"foreignKey:UserID"`
	UserID         uint      `json:"user_id"         gorm:"primary_key;autoIncrement:false"`
	AlarmID        string    `json:"alarm_id"        gorm:"primary_key"`
	DateAssociated time.Time `json:"dateAssociated"`
}
