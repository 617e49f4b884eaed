package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"amserver/authentication"
	"amserver/database"
	"amserver/detection"
	"amserver/logger"
	"amserver/model"
)

// ProvisionUserHandler creates the user document. The auth service calls
// it after it has accepted the credentials; the hash it sends is stored
// without interpretation.
func ProvisionUserHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "user_provision", "addr": c.Request.RemoteAddr})
	log.Info("User provisioning request")
	var data UserProvisionRequest
	err := c.ShouldBind(&data)
	if err != nil {
		log.Error("Parameter error: ", err)
		c.JSON(http.StatusBadRequest, ParameterErrorResponse)
		return
	}
	if !CheckUsername(data.Username) {
		log.Info(fmt.Sprintf("Invalid username: %s", data.Username))
		c.JSON(http.StatusForbidden, InvalidUsernameResponse)
		return
	}
	if !CheckEmail(data.Email) {
		log.Info(fmt.Sprintf("Invalid email: %s", data.Email))
		c.JSON(http.StatusForbidden, InvalidEmailResponse)
		return
	}
	user := model.User{
		Username:       data.Username,
		Email:          data.Email,
		CredentialHash: []byte(data.CredentialHash),
	}
	result := database.GormDB.Create(&user)
	if result.Error != nil {
		log.Info("Provisioning username already exists")
		var response = BaseResponse{
			Message: "username has been registered",
			Code:    1,
		}
		c.JSON(http.StatusForbidden, response)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "success", "code": Success, "user_id": user.ID})
	log.Info("User provisioned")
}

// LinkCameraHandler links a camera to the caller and grants live access.
// An unknown camera id is registered on the fly, the same no-op contract
// as /cameras/register.
func LinkCameraHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "camera_link", "addr": c.Request.RemoteAddr})
	log.Info("Camera link request")
	var data CameraLinkRequest
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
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	var user model.User
	result := database.GormDB.Where("id = ?", claims.UserId).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Warn("User id not found: ", claims.UserId)
		var response = BaseResponse{
			Message: "user not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	} else if result.Error != nil {
		log.Error("Failed to get the user record: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	camera := model.Camera{
		CameraID:    data.CameraId,
		Description: data.Description,
	}
	err = database.GormDB.Where("camera_id = ?", data.CameraId).FirstOrCreate(&camera).Error
	if err != nil {
		log.Error("Failed to auto-register the camera: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	err = database.GormDB.Model(&user).
		Updates(map[string]interface{}{"camera_id": data.CameraId, "has_live_access": true}).Error
	if err != nil {
		log.Error("Failed to link the camera: ", err)
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
	log.Info("Camera linked")
}

func UnlinkCameraHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "camera_unlink", "addr": c.Request.RemoteAddr})
	log.Info("Camera unlink request")
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	result := database.GormDB.Model(&model.User{}).Where("id = ?", claims.UserId).
		Updates(map[string]interface{}{"camera_id": nil, "has_live_access": false})
	if result.Error != nil {
		log.Error("Failed to unlink the camera: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if result.RowsAffected == 0 {
		log.Warn("User id not found: ", claims.UserId)
		var response = BaseResponse{
			Message: "user not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse)
	log.Info("Camera unlinked")
}

func LiveHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "live", "addr": c.Request.RemoteAddr})
	log.Info("Live feed request")
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	var user model.User
	result := database.GormDB.Where("id = ?", claims.UserId).First(&user)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		log.Warn("User id not found: ", claims.UserId)
		var response = BaseResponse{
			Message: "user not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	} else if result.Error != nil {
		log.Error("Failed to get the user record: ", result.Error)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if !user.HasLiveAccess {
		log.Info("User has no live access")
		var response = BaseResponse{
			Message: "no camera linked, live access disabled",
			Code:    2,
		}
		c.JSON(http.StatusForbidden, response)
		return
	}
	c.JSON(http.StatusOK, LiveResponse{
		BaseResponse: SuccessResponse,
		Feed:         detection.GetFeedStatus(),
	})
	log.Info("Live feed info sent")
}
