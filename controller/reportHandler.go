package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"amserver/access"
	"amserver/authentication"
	"amserver/database"
	"amserver/logger"
	"amserver/report"
)

func GetReportHandler(c *gin.Context) {
	log := logger.Log.WithFields(logrus.Fields{"conn-type": "http", "api": "report", "addr": c.Request.RemoteAddr})
	log.Info("Report request")
	claimsInterface, _ := c.Get("claims")
	claims := claimsInterface.(*authentication.Claims)
	rng := report.Range(c.Query("range"))
	result, err := report.Aggregate(database.GormDB, claims.UserId, rng)
	if errors.Is(err, report.ErrUnknownRange) {
		log.Info("Unknown report range: ", rng)
		var response = BaseResponse{
			Message: "range must be daily, weekly or monthly",
			Code:    ParameterError,
		}
		c.JSON(http.StatusBadRequest, response)
		return
	}
	if errors.Is(err, access.ErrUserNotFound) {
		log.Warn("User id not found: ", claims.UserId)
		var response = BaseResponse{
			Message: "user not found",
			Code:    1,
		}
		c.JSON(http.StatusNotFound, response)
		return
	}
	if errors.Is(err, report.ErrTimeout) {
		log.Error("Report aggregation timed out: ", err)
		var response = BaseResponse{
			Message: err.Error(),
			Code:    InternalError,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	if err != nil {
		log.Error("Report aggregation failed: ", err)
		var response = BaseResponse{
			Message: "database failed",
			Code:    DatabaseFailure,
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}
	message := "success"
	if !result.HasAccess {
		message = "no camera or alarms linked to this account"
	}
	c.JSON(http.StatusOK, ReportResponse{
		BaseResponse: BaseResponse{
			Message: message,
			Code:    Success,
		},
		Data:      result.Buckets,
		HasAccess: result.HasAccess,
		HasCamera: result.HasCamera,
		HasAlarm:  result.HasAlarm,
	})
	log.Info("Report sent")
}
