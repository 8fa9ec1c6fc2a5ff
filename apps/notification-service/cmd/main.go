package main

import (
	"github.com/gin-gonic/gin"

	"pixgram-social/apps/notification-service/consumer"
	"pixgram-social/apps/notification-service/dao"
	"pixgram-social/apps/notification-service/handler"
	"pixgram-social/apps/notification-service/model"
	"pixgram-social/apps/notification-service/service"
	"pixgram-social/pkg/server"
)

func main() {
	app := server.NewApplication("notification-service")

	app.EnableHTTP()

	// 初始化DAO层
	notificationDAO := dao.NewMongoDAO(app.GetMongoDB())

	// 初始化Service层
	svc := service.NewService(notificationDAO, app.GetRedisClient(), app.GetIDNode(), app.GetLogger())

	// 初始化Handler
	httpHandler := handler.NewHTTPHandler(svc, app.GetLogger())

	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		httpHandler.RegisterRoutes(engine)
	})

	// 消费互动事件做通知扇出
	interactionConsumer := consumer.NewInteractionConsumer(svc, app.GetLogger())
	if err := app.AddConsumer([]string{model.TopicInteractionEvents}, interactionConsumer); err != nil {
		panic("Failed to add interaction consumer: " + err.Error())
	}

	if err := app.Run(); err != nil {
		panic(err)
	}
}
