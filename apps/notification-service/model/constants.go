package model

// 默认分页配置
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Kafka主题
const (
	TopicInteractionEvents = "interaction-events"
)

// 事件类型
const (
	EventTypeCreate = "create"
	EventTypeDelete = "delete"
)

// 目标对象类型
const (
	ObjectTypeImage = "image"
	ObjectTypeUser  = "user"
)

// 通知类型
const (
	NotifyTypeLike     = "like"
	NotifyTypeFavorite = "favorite"
	NotifyTypeFollow   = "follow"
	NotifyTypeRepost   = "repost"
	NotifyTypeComment  = "comment"
)

// Redis缓存键前缀
const (
	CacheKeyUnreadCount = "notification:unread"
)

// 缓存过期时间（秒）
const (
	CacheExpireUnread = 300 // 未读数缓存5分钟
)

// Mongo集合名
const (
	CollectionNotifications = "notifications"
)
