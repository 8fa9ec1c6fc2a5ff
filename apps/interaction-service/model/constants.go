package model

// 默认分页配置
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 互动类型
const (
	KindLike     = "like"     // 点赞
	KindFavorite = "favorite" // 收藏
	KindFollow   = "follow"   // 关注
	KindRepost   = "repost"   // 转发
)

// 目标对象类型
const (
	ObjectTypeImage = "image" // 图片
	ObjectTypeUser  = "user"  // 用户
)

// 事件类型
const (
	EventTypeCreate = "create"
	EventTypeDelete = "delete"
)

// Kafka主题
const (
	TopicInteractionEvents = "interaction-events"
)

// Redis缓存键前缀
const (
	CacheKeyUserInteraction = "interaction:user"  // 用户互动状态缓存
	CacheKeyTargetCount     = "interaction:count" // 目标计数缓存
)

// 缓存过期时间（秒）
const (
	CacheExpireUserAction = 3600 // 用户行为缓存1小时
	CacheExpireCount      = 300  // 计数缓存5分钟
)
