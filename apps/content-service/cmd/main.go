package main

import (
	"github.com/gin-gonic/gin"

	"pixgram-social/apps/content-service/dao"
	"pixgram-social/apps/content-service/handler"
	"pixgram-social/apps/content-service/model"
	"pixgram-social/apps/content-service/service"
	"pixgram-social/pkg/server"
)

func main() {
	app := server.NewApplication("content-service")

	app.EnableHTTP()

	postgreSQL := app.GetPostgreSQL()

	if err := postgreSQL.AutoMigrate(
		&model.User{},
		&model.Image{},
		&model.Album{},
		&model.Comment{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// 初始化DAO层
	contentDAO := dao.NewContentDAO(postgreSQL)
	commentDAO := dao.NewCommentDAO(postgreSQL)

	// 初始化Service层
	svc := service.NewService(contentDAO, commentDAO,
		app.GetRedisClient(), app.GetKafkaProducer(), app.GetLogger())

	// 初始化Handler
	httpHandler := handler.NewHTTPHandler(svc, app.GetLogger())

	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		httpHandler.RegisterRoutes(engine)
	})

	if err := app.Run(); err != nil {
		panic(err)
	}
}
