package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"amserver/database"
	"amserver/logger"
	"amserver/model"
)

// RegisterCameraHandler is idempotent: registering an id that already
// exists answers with the stored record and changes nothing.
func RegisterCameraHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "camera_register", "addr": c.Request.RemoteAddr})
	log.Info("Camera registration")
	var data CameraRegisterRequest
	err := c.ShouldBind(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	if !CheckCameraId(data.CameraId) {
		log.Info(fmt.Sprintf("Invalid camera id: %s", data.CameraId))
		c.JSON(http.StatusForbidden, InvalidCameraIdResponse)
		return
	}
	var camera model.Camera
	result := database.GormDB.Where("camera_id = ?", data.CameraId).First(&camera)
	if result.Error == nil {
		c.JSON(http.StatusOK, CameraResponse{
			BaseResponse: SuccessResponse,
			Camera:       camera,
		})
		log.Info("Camera already registered, record sent")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Error("Failed to look up the camera: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	camera = model.Camera{
		CameraID:    data.CameraId,
		Description: data.Description,
	}
	err = database.GormDB.Create(&camera).Error
	if err != nil {
		log.Error("Failed to register the camera: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	c.JSON(http.StatusOK, CameraResponse{
		BaseResponse: SuccessResponse,
		Camera:       camera,
	})
	log.Info("Camera registered")
}
