package wsserver

import (
	"amserver/model"
)

// Realtime event types emitted to connected clients. The payload is the
// stored document shape of the alert or alarm event.
const (
	TypeGunAlert   = "gun_alert"
	TypeKnifeAlert = "knife_alert"
	TypeAlarmEvent = "alarm_event"
)

type AlertMessage struct {
	Type    string      `json:"type"`
	Payload model.Alert `json:"payload"`
}

type AlarmEventMessage struct {
	Type    string           `json:"type"`
	Payload model.AlarmEvent `json:"payload"`
}
