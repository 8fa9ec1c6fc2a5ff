package model

import (
	"fmt"
	"time"
)

// Notification 通知收件箱条目
type Notification struct {
	ID             int64     `json:"id" bson:"notification_id"`
	RecipientID    int64     `json:"recipient_id" bson:"recipient_id"`
	SenderID       int64     `json:"sender_id" bson:"sender_id"`
	Type           string    `json:"type" bson:"type"`
	Content        string    `json:"content" bson:"content"`
	RelatedImageID int64     `json:"related_image_id,omitempty" bson:"related_image_id,omitempty"`
	IsRead         bool      `json:"is_read" bson:"is_read"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// InteractionEvent 互动事件，与上游生产者保持同构
type InteractionEvent struct {
	EventType       string    `json:"event_type"`
	UserID          int64     `json:"user_id"`
	ObjectID        int64     `json:"object_id"`
	ObjectType      string    `json:"object_type"`
	InteractionType string    `json:"interaction_type"`
	TargetOwnerID   int64     `json:"target_owner_id"`
	Caption         string    `json:"caption,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// notifyTemplates 互动类型到通知内容的映射
var notifyTemplates = map[string]string{
	NotifyTypeLike:     "liked your image",
	NotifyTypeFavorite: "favorited your image",
	NotifyTypeFollow:   "started following you",
	NotifyTypeRepost:   "reposted your image",
	NotifyTypeComment:  "commented on your image",
}

// TemplateFor 返回互动类型对应的通知内容，未知类型返回false
func TemplateFor(interactionType string) (string, bool) {
	content, ok := notifyTemplates[interactionType]
	return content, ok
}

// GetUnreadCountKey 未读数缓存键
func GetUnreadCountKey(recipientID int64) string {
	return fmt.Sprintf("%s:%d", CacheKeyUnreadCount, recipientID)
}
