package access

import (
	"errors"

	"gorm.io/gorm"

	"amserver/model"
)

var ErrUserNotFound = errors.New("user not found")

// Snapshot is the visibility predicate for one user, captured at a single
// point in time. Realtime sessions keep the snapshot they were registered
// with; a user whose links change mid-session keeps the old visibility
// until reconnecting.
type Snapshot struct {
	CameraID  string
	HasCamera bool
	AlarmIDs  map[string]struct{}
	HasAlarm  bool
}

func Resolve(db *gorm.DB, userId uint64) (Snapshot, error) {
	var user model.User
	err := db.Where("id = ?", userId).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, ErrUserNotFound
	} else if err != nil {
		return Snapshot{}, err
	}
	snapshot := Snapshot{AlarmIDs: map[string]struct{}{}}
	if user.CameraID != nil && *user.CameraID != "" {
		snapshot.CameraID = *user.CameraID
		snapshot.HasCamera = true
	}
	var associations []model.AlarmAssociation
	err = db.Where("user_id = ?", userId).Find(&associations).Error
	if err != nil {
		return Snapshot{}, err
	}
	for _, association := range associations {
		snapshot.AlarmIDs[association.AlarmID] = struct{}{}
	}
	snapshot.HasAlarm = len(snapshot.AlarmIDs) > 0
	return snapshot, nil
}

func (s Snapshot) VisibleAlert(alert model.Alert) bool {
	return s.HasCamera && alert.CameraID == s.CameraID
}

func (s Snapshot) VisibleAlarmEvent(event model.AlarmEvent) bool {
	if !s.HasAlarm {
		return false
	}
	_, ok := s.AlarmIDs[event.AlarmID]
	return ok
}
