package router

import (
	"github.com/gin-gonic/gin"

	"amserver/authentication"
	"amserver/controller"
	"amserver/controller/wsserver"
)

func InitRouter(app *gin.Engine, dist *wsserver.Distributor) {
	app.GET("/ws/alerts", authentication.OptionalMiddleware, wsserver.WsAlertsHandler(dist))

	app.POST("/alert", controller.PostAlertHandler(dist))
	app.POST("/cameras/register", controller.RegisterCameraHandler)
	app.POST("/auth/provision", controller.ProvisionUserHandler)

	alertGroup := app.Group("/alerts")
	alertGroup.GET("", authentication.MiddlewareWithAvailableControl, controller.ListAlertsHandler)
	alertGroup.PUT("/status", authentication.MiddlewareWithAvailableControl, controller.UpdateAlertStatusHandler)

	alarmGroup := app.Group("/alarms")
	alarmGroup.POST("/new-event", controller.NewAlarmEventHandler)
	alarmGroup.POST("/validate", authentication.MiddlewareWithAvailableControl, controller.ValidateAlarmHandler)
	alarmGroup.POST("/associate", authentication.MiddlewareWithAvailableControl, controller.AssociateAlarmHandler)
	alarmGroup.DELETE("/disassociate", authentication.MiddlewareWithAvailableControl, controller.DisassociateAlarmHandler)
	alarmGroup.GET("/user-alarms", authentication.MiddlewareWithAvailableControl, controller.UserAlarmsHandler)

	app.GET("/reports", authentication.MiddlewareWithAvailableControl, controller.GetReportHandler)

	userGroup := app.Group("/user")
	userGroup.POST("/camera/link", authentication.MiddlewareWithAvailableControl, controller.LinkCameraHandler)
	userGroup.POST("/camera/unlink", authentication.MiddlewareWithAvailableControl, controller.UnlinkCameraHandler)
	userGroup.GET("/live", authentication.MiddlewareWithAvailableControl, controller.LiveHandler)
}
