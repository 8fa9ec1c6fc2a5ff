package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"

	"pixgram-social/apps/notification-service/model"
	"pixgram-social/apps/notification-service/service"
	"pixgram-social/pkg/logger"
)

// InteractionConsumer 消费互动事件并落为通知
type InteractionConsumer struct {
	svc    *service.Service
	logger logger.Logger
}

// NewInteractionConsumer 创建互动事件消费者
func NewInteractionConsumer(svc *service.Service, log logger.Logger) *InteractionConsumer {
	return &InteractionConsumer{
		svc:    svc,
		logger: log,
	}
}

// HandleMessage 处理单条互动事件
// 解析失败的消息返回nil跳过，避免毒消息卡住分区
func (c *InteractionConsumer) HandleMessage(msg *sarama.ConsumerMessage) error {
	ctx := context.Background()

	var event model.InteractionEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error(ctx, "Failed to unmarshal interaction event, skipping",
			logger.F("error", err.Error()),
			logger.F("topic", msg.Topic),
			logger.F("partition", msg.Partition),
			logger.F("offset", msg.Offset))
		return nil
	}

	if err := c.svc.HandleInteractionEvent(ctx, &event); err != nil {
		c.logger.Error(ctx, "Failed to handle interaction event",
			logger.F("error", err.Error()),
			logger.F("eventType", event.EventType),
			logger.F("interactionType", event.InteractionType),
			logger.F("userID", event.UserID),
			logger.F("objectID", event.ObjectID))
		return err
	}

	return nil
}
