package controller

type AlertCreateRequest struct {
	CameraId      string   `json:"camera_id"      form:"camera_id"      binding:"required"`
	Timestamp     string   `json:"timestamp"      form:"timestamp"      binding:"required"`
	Confidence    *float64 `json:"confidence"     form:"confidence"     binding:"required"`
	DetectionType string   `json:"detection_type" form:"detection_type"`
	ImageBase64   string   `json:"image_base64"   form:"image_base64"`
}

type AlertStatusRequest struct {
	AlertId uint64 `json:"alert_id" form:"alert_id" binding:"required"`
	Status  string `json:"status"   form:"status"   binding:"required"`
}

type AlertListRequest struct {
	PageRequest
	Status        string `json:"status"         form:"status"`
	CameraId      string `json:"camera_id"      form:"camera_id"`
	DetectionType string `json:"detection_type" form:"detection_type"`
}

// Partition and Armed are pointers so 0 and false survive the required check.
type AlarmNewEventRequest struct {
	AlarmId   string `json:"alarm_id"  form:"alarm_id"  binding:"required"`
	Partition *int   `json:"partition" form:"partition" binding:"required"`
	Armed     *bool  `json:"armed"     form:"armed"     binding:"required"`
	Timestamp string `json:"timestamp" form:"timestamp" binding:"required"`
}

type AlarmIdRequest struct {
	AlarmId string `json:"alarm_id" form:"alarm_id" binding:"required"`
}

type PageRequest struct {
	Page  int `json:"page"  form:"page,default=1"`
	Limit int `json:"limit" form:"limit,default=10"`
}

type CameraRegisterRequest struct {
	CameraId    string `json:"camera_id"   form:"camera_id" binding:"required"`
	Description string `json:"description" form:"description"`
}

type CameraLinkRequest struct {
	CameraId    string `json:"camera_id"   form:"camera_id" binding:"required"`
	Description string `json:"description" form:"description"`
}

// CredentialHash arrives pre-hashed from the auth service and is stored opaque.
type UserProvisionRequest struct {
	Username       string `json:"username"        form:"username"        binding:"required"`
	Email          string `json:"email"           form:"email"           binding:"required"`
	CredentialHash string `json:"credential_hash" form:"credential_hash" binding:"required"`
}
