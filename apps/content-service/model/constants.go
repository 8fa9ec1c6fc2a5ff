package model

// 默认分页配置
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 事件类型
const (
	EventTypeCreate = "create"
	EventTypeDelete = "delete"
)

// 评论事件走互动事件主题，下游通知统一消费
const (
	TopicInteractionEvents = "interaction-events"
	KindComment            = "comment"
	ObjectTypeImage        = "image"
)

// Redis缓存键前缀
const (
	CacheKeyTrending = "content:trending"
)

// 缓存过期时间（秒）
const (
	CacheExpireTrending = 600 // 热门榜缓存10分钟
)

// 热门榜只缓存前几页
const TrendingCachedPages = 3

// TrendingOrderExpr 热门榜排序表达式
// 点赞优先，评论次之，收藏再次，最后按新旧，ID兜底保证全序
const TrendingOrderExpr = "likes_count DESC, comments_count DESC, favorites_count DESC, created_at DESC, id DESC"
