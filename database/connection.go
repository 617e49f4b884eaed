package database

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"amserver/config"
	"amserver/model"
)

var GormDB *gorm.DB
var TokenDB *redis.Client

func MysqlConnect() {
	cfg := config.Config.MySql
	conn, err := gorm.Open(
		mysql.Open(
			fmt.Sprintf(
				"%s:%s@tcp(%s)/%s?charset=utf8&parseTime=true",
				cfg.User,
				cfg.Password,
				cfg.Addr,
				cfg.Database)), &gorm.Config{})
	if err != nil {
		panic("Could not connect to the database!")
	}
	GormDB = conn

	_ = conn.AutoMigrate(&model.User{})
	_ = conn.AutoMigrate(&model.Camera{})
	_ = conn.AutoMigrate(&model.Alert{})
	_ = conn.AutoMigrate(&model.AlarmEvent{})
	_ = conn.AutoMigrate(&model.AlarmAssociation{})
}

func RedisConnect() {
	cfg := config.Config.Redis
	TokenDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.Databases.Token,
	})
}
