package controller

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"amserver/access"
	"amserver/authentication"
	"amserver/controller/wsserver"
	"amserver/database"
	"amserver/email"
	"amserver/logger"
	"amserver/model"
)

// The detection service timestamps alerts with a local ISO datetime and no
// zone suffix, so both forms are accepted.
var alertTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseAlertTime(value string) (time.Time, error) {
	for _, layout := range alertTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("can not parse %q as a timestamp", value)
}

// PostAlertHandler ingests a detection alert, persists it, pushes it to
// the realtime sessions scoped by camera and mails the linked user.
func PostAlertHandler(dist *wsserver.Distributor) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "post_alert", "addr": c.Request.RemoteAddr})
		log.Info("Detection alert received")
		var data AlertCreateRequest
		err := c.ShouldBind(&data)
		if err != nil {
			log.Error("Parameter error: ", err)
			c.JSON(http.StatusBadRequest, ParameterErrorResponse)
			return
		}
		if *data.Confidence < 0 || *data.Confidence > 1 {
			log.Info(fmt.Sprintf("Confidence out of range: %f", *data.Confidence))
			var response = BaseResponse{
				Message: "confidence must be between 0 and 1",
				Code:    ParameterError,
			}
			c.JSON(http.StatusBadRequest, response)
			return
		}
		timestamp, err := parseAlertTime(data.Timestamp)
		if err != nil {
			log.Info("Invalid timestamp: ", err)
			var response = BaseResponse{
				Message: "timestamp format error",
				Code:    ParameterError,
			}
			c.JSON(http.StatusBadRequest, response)
			return
		}
		detectionType := data.DetectionType
		if detectionType == "" {
			detectionType = model.DetectionGun
		}
		alert := model.Alert{
			CameraID:      data.CameraId,
			Timestamp:     timestamp,
			Confidence:    *data.Confidence,
			DetectionType: detectionType,
			Status:        model.AlertActive,
			ImageBase64:   data.ImageBase64,
		}
		err = database.GormDB.Create(&alert).Error
		if err != nil {
			log.Error("Database failed when inserting alert: ", err)
			var response = BaseResponse{
				Message: "database failed",
				Code:    DatabaseFailure,
			}
			c.JSON(http.StatusInternalServerError, response)
			return
		}
		dist.PublishAlert(alert)
		go notifyLinkedUser(database.GormDB, alert)
		c.JSON(http.StatusOK, AlertResponse{
			BaseResponse: SuccessResponse,
			Alert:        alert,
		})
		log.Info("Detection alert stored and pushed")
	}
}

// Best-effort mail to whoever has the alert's camera linked.
func notifyLinkedUser(db *gorm.DB, alert model.Alert) {
	log := logger.Log.WithFields(logrus.Fields{"func": "alert_notification", "camera": alert.CameraID})
	var user model.User
	err := db.Where("camera_id = ?", alert.CameraID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	} else if err != nil {
		log.Warn("Failed to look up the linked user: ", err)
		return
	}
	if user.Email == "" {
		return
	}
	err = email.SendAlertNotification(user, alert)
	if err != nil {
		log.Warn("Unable to send the alert notification: ", err)
	}
}

func ListAlertsHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "list_alerts", "addr": c.Request.RemoteAddr})
	log.Info("User pulling alerts")
	var data AlertListRequest
	err := c.ShouldBindQuery(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	snapshot, err := access.Resolve(database.GormDB, claims.UserId)
	if errors.Is(err, access.ErrUserNotFound) {
		log.Warn("User id not found: ", claims.UserId)
		var response = BaseResponse{
			Message: "user not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	} else if err != nil {
		log.Error("Failed to resolve access: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if !snapshot.HasCamera {
		c.JSON(http.StatusOK, AlertListResponse{
			BaseResponse: BaseResponse{
				Message: "no camera linked to this account",
				Code:    Success,
			},
			Alerts:      &[]model.Alert{},
			CurrentPage: data.Page,
		})
		log.Info("Alert list sent (no camera access)")
		return
	}
	if data.CameraId != "" && data.CameraId != snapshot.CameraID {
		c.JSON(http.StatusOK, AlertListResponse{
			BaseResponse: BaseResponse{
				Message: "camera is not linked to this account",
				Code:    Success,
			},
			Alerts:      &[]model.Alert{},
			CurrentPage: data.Page,
		})
		log.Info("Alert list sent (foreign camera filter)")
		return
	}
	db := database.GormDB.Model(&model.Alert{}).Where("camera_id = ?", snapshot.CameraID)
	if data.Status != "" {
		db = db.Where("status = ?", data.Status)
	}
	if data.DetectionType != "" {
		db = db.Where("detection_type = ?", data.DetectionType)
	}
	var total int64
	db.Count(&total)
	var alerts []model.Alert
	db.Order("timestamp desc").Scopes(Paginate(data.Page, data.Limit)).Find(&alerts)
	c.JSON(http.StatusOK, AlertListResponse{
		BaseResponse: SuccessResponse,
		Alerts:       &alerts,
		Total:        total,
		TotalPages:   totalPages(total, data.Limit),
		CurrentPage:  data.Page,
	})
	log.Info("Alert list sent")
}

func UpdateAlertStatusHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "alert_status", "addr": c.Request.RemoteAddr})
	log.Info("User updating alert status")
	var data AlertStatusRequest
	err := c.ShouldBind(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	if data.Status != model.AlertActive &&
		data.Status != model.AlertAcknowledged &&
		data.Status != model.AlertResolved {
		log.Info(fmt.Sprintf("Invalid alert status: %s", data.Status))
		c.JSON(http.StatusBadRequest, InvalidStatusResponse)
		return
	}
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	snapshot, err := access.Resolve(database.GormDB, claims.UserId)
	if errors.Is(err, access.ErrUserNotFound) {
		log.Warn("User id not found: ", claims.UserId)
		var response = BaseResponse{
			Message: "user not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	} else if err != nil {
		log.Error("Failed to resolve access: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	var alert model.Alert
	result := database.GormDB.Where("id = ?", data.AlertId).First(&alert)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Warn("Alert record not found: ", data.AlertId)
		var response = BaseResponse{
			Message: "alert record not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	} else if result.Error != nil {
		log.Error("Failed to get the alert record: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if !snapshot.VisibleAlert(alert) {
		log.Warn("Alert does not belong to the linked camera")
		var response = BaseResponse{
			Message: "alert does not belong to the linked camera",
			Code:    2,
		}
		c.JSON(http.StatusForbidden, response)
		return
	}
	err = database.GormDB.Model(&alert).Update("status", data.Status).Error
	if err != nil {
		log.Error("Failed to update the alert status: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	c.JSON(http.StatusOK, AlertResponse{
		BaseResponse: SuccessResponse,
		Alert:        alert,
	})
	log.Info("Alert status updated")
}

// GORM pagination scope, page starts at 1.
func Paginate(page int, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		switch {
		case limit > 100:
			limit = 100
		case limit <= 0:
			limit = 10
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = 10
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
