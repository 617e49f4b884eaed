package controller

import (
	"amserver/detection"
	"amserver/model"
	"amserver/report"
)

type BaseResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type AlertResponse struct {
	BaseResponse
	Alert model.Alert `json:"alert"`
}

type AlertListResponse struct {
	BaseResponse
	Alerts      *[]model.Alert `json:"alerts"`
	Total       int64          `json:"total"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

type AlarmEventResponse struct {
	BaseResponse
	Event model.AlarmEvent `json:"event"`
}

type AlarmValidateResponse struct {
	BaseResponse
	Alarm model.AlarmEvent `json:"alarm"`
}

type UserAlarmsResponse struct {
	BaseResponse
	AlarmNotifications *[]model.AlarmEvent        `json:"alarmNotifications"`
	AssociatedAlarms   *[]model.AlarmAssociation  `json:"associatedAlarms"`
	TotalPages         int                        `json:"totalPages"`
	CurrentPage        int                        `json:"currentPage"`
	Total              int64                      `json:"total"`
}

type ReportResponse struct {
	BaseResponse
	Data      []report.Bucket `json:"data"`
	HasAccess bool            `json:"hasAccess"`
	HasCamera bool            `json:"hasCamera"`
	HasAlarm  bool            `json:"hasAlarm"`
}

type CameraResponse struct {
	BaseResponse
	Camera model.Camera `json:"camera"`
}

type LiveResponse struct {
	BaseResponse
	Feed *detection.FeedStatus `json:"feed"`
}
