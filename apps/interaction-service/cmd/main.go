package main

import (
	"github.com/gin-gonic/gin"

	"pixgram-social/apps/interaction-service/dao"
	"pixgram-social/apps/interaction-service/handler"
	"pixgram-social/apps/interaction-service/model"
	"pixgram-social/apps/interaction-service/service"
	"pixgram-social/pkg/server"
)

func main() {
	app := server.NewApplication("interaction-service")

	app.EnableHTTP()

	postgreSQL := app.GetPostgreSQL()

	if err := postgreSQL.AutoMigrate(&model.Interaction{}); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// 初始化DAO层
	interactionDAO := dao.NewInteractionDAO(postgreSQL)
	counterDAO := dao.NewCounterDAO(postgreSQL)
	contentReader := dao.NewContentReader(postgreSQL)

	// 初始化Service层
	svc := service.NewService(interactionDAO, counterDAO, contentReader,
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
