package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"amserver/authentication"
	"amserver/database"
	"amserver/logger"
	"amserver/model"
)

// NewAlarmEventHandler appends an alarm event. The broadcast to realtime
// sessions is not done here: the alarm event watcher tails the table and
// is the single forwarding path, the same one used for rows the alarm
// panel inserts directly.
func NewAlarmEventHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "alarm_new_event", "addr": c.Request.RemoteAddr})
	log.Info("Alarm event received")
	var data AlarmNewEventRequest
	err := c.ShouldBind(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	event := model.AlarmEvent{
		AlarmID:   data.AlarmId,
		Partition: *data.Partition,
		Armed:     *data.Armed,
		Timestamp: data.Timestamp,
	}
	err = database.GormDB.Create(&event).Error
	if err != nil {
		log.Error("Database failed when inserting alarm event: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	c.JSON(http.StatusOK, AlarmEventResponse{
		BaseResponse: SuccessResponse,
		Event:        event,
	})
	log.Info("Alarm event stored")
}

// An alarm id exists iff the append-only event log carries at least one
// event for it; validate answers with the most recent one.
func ValidateAlarmHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "alarm_validate", "addr": c.Request.RemoteAddr})
	log.Info("Alarm validation request")
	var data AlarmIdRequest
	err := c.ShouldBind(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	if !CheckAlarmId(data.AlarmId) {
		log.Info(fmt.Sprintf("Invalid alarm id: %s", data.AlarmId))
		c.JSON(http.StatusBadRequest, InvalidAlarmIdResponse)
		return
	}
	var event model.AlarmEvent
	result := database.GormDB.Where("alarm_id = ?", data.AlarmId).Order("id desc").First(&event)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Info("Alarm id not found: ", data.AlarmId)
		var response = BaseResponse{
			Message: "alarm not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	} else if result.Error != nil {
		log.Error("Failed to look up the alarm: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	c.JSON(http.StatusOK, AlarmValidateResponse{
		BaseResponse: SuccessResponse,
		Alarm:        event,
	})
	log.Info("Alarm validation sent")
}

func AssociateAlarmHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "alarm_associate", "addr": c.Request.RemoteAddr})
	log.Info("Alarm association request")
	var data AlarmIdRequest
	err := c.ShouldBind(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	var total int64
	err = database.GormDB.Model(&model.AlarmEvent{}).Where("alarm_id = ?", data.AlarmId).Count(&total).Error
	if err != nil {
		log.Error("Failed to look up the alarm: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if total == 0 {
		log.Info("Alarm id not found: ", data.AlarmId)
		var response = BaseResponse{
			Message: "alarm not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	}
	var existing model.AlarmAssociation
	result := database.GormDB.
		Where("user_id = ? AND alarm_id = ?", claims.UserId, data.AlarmId).
		First(&existing)
	if result.Error == nil {
		log.Info("Alarm already associated: ", data.AlarmId)
		var response = BaseResponse{
			Message: "alarm is already associated with this account",
			Code:    2,
		}
		c.JSON(http.StatusBadRequest, response)
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Error("Failed to check the association: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	association := model.AlarmAssociation{
		UserID:         uint(claims.UserId),
		AlarmID:        data.AlarmId,
		DateAssociated: time.Now(),
	}
	err = database.GormDB.Create(&association).Error
	if err != nil {
		log.Error("Failed to create the association: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse)
	log.Info("Alarm associated")
}

func DisassociateAlarmHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "alarm_disassociate", "addr": c.Request.RemoteAddr})
	log.Info("Alarm disassociation request")
	var data AlarmIdRequest
	err := c.ShouldBind(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	result := database.GormDB.
		Where("user_id = ? AND alarm_id = ?", claims.UserId, data.AlarmId).
		Delete(&model.AlarmAssociation{})
	if result.Error != nil {
		log.Error("Failed to remove the association: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if result.RowsAffected == 0 {
		log.Info("Alarm is not associated: ", data.AlarmId)
		var response = BaseResponse{
			Message: "alarm is not associated with this account",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse)
	log.Info("Alarm disassociated")
}

func UserAlarmsHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "user_alarms", "addr": c.Request.RemoteAddr})
	log.Info("User pulling alarm notifications")
	var data PageRequest
	err := c.ShouldBindQuery(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	var associations []model.AlarmAssociation
	err = database.GormDB.Where("user_id = ?", claims.UserId).Find(&associations).Error
	if err != nil {
		log.Error("Failed to load the associations: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if len(associations) == 0 {
		c.JSON(http.StatusOK, UserAlarmsResponse{
			BaseResponse: BaseResponse{
				Message: "no alarms associated with this account",
				Code:    Success,
			},
			AlarmNotifications: &[]model.AlarmEvent{},
			AssociatedAlarms:   &[]model.AlarmAssociation{},
			CurrentPage:        data.Page,
		})
		log.Info("Alarm notification list sent (no alarm access)")
		return
	}
	alarmIds := make([]string, 0, len(associations))
	for _, association := range associations {
		alarmIds = append(alarmIds, association.AlarmID)
	}
	db := database.GormDB.Model(&model.AlarmEvent{}).Where("alarm_id IN ?", alarmIds)
	var total int64
	db.Count(&total)
	var events []model.AlarmEvent
	db.Order("id desc").Scopes(Paginate(data.Page, data.Limit)).Find(&events)
	c.JSON(http.StatusOK, UserAlarmsResponse{
		BaseResponse:       SuccessResponse,
		AlarmNotifications: &events,
		AssociatedAlarms:   &associations,
		TotalPages:         totalPages(total, data.Limit),
		CurrentPage:        data.Page,
		Total:              total,
	})
	log.Info("Alarm notification list sent")
}
