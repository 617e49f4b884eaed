package main

import (
	"context"

	"github.com/gin-gonic/gin"

	"amserver/authentication"
	"amserver/config"
	"amserver/controller/wsserver"
	"amserver/database"
	"amserver/logger"
	"amserver/router"
	"amserver/watcher"
)

func main() {
	config.Load()
	database.MysqlConnect()
	database.RedisConnect()
	go authentication.ClearExpiredRecords(context.Background())
	dist := wsserver.NewDistributor()
	w := watcher.New(database.GormDB, dist)
	err := w.Start(context.Background())
	if err != nil {
		logger.Log.Error("Failed to start the alarm event watcher: ", err)
	}
	app := gin.Default()
	router.InitRouter(app, dist)
	_ = app.Run("0.0.0.0:8750")
}
