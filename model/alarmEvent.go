package model

// AlarmEvent is an immutable arm/disarm fact. The external alarm panel
// inserts rows into this table directly, so the table name is part of the
// integration contract and must not change with gorm naming conventions.
// Timestamp is kept as the raw string the panel reports.
type AlarmEvent struct {
	ID        uint   `json:"id"        gorm:"primary_key"`
	AlarmID   string `json:"alarm_id"  gorm:"index"`
	Partition int    `json:"partition"`
	Armed     bool   `json:"armed"`
	Timestamp string `json:"timestamp"`
}

func (AlarmEvent) TableName() string {
	return "alarm_events"
}
