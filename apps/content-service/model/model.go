package model

import (
	"fmt"
	"sort"
	"time"
)

// User 用户档案
// 关注关系的冗余计数落在这里，账本侧通过列名引用
type User struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"username" gorm:"type:varchar(50);not null;uniqueIndex"`
	AvatarURL      string    `json:"avatar_url" gorm:"type:varchar(500)"`
	Bio            string    `json:"bio" gorm:"type:text"`
	FollowersCount int64     `json:"followers_count" gorm:"default:0"`
	FollowingCount int64     `json:"following_count" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (User) TableName() string {
	return "users"
}

// Image 图片
type Image struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorID       int64     `json:"author_id" gorm:"not null;index"`
	AlbumID        int64     `json:"album_id" gorm:"index"`
	Title          string    `json:"title" gorm:"type:varchar(200)"`
	Description    string    `json:"description" gorm:"type:text"`
	StorageKey     string    `json:"storage_key" gorm:"type:varchar(500);not null"`
	IsPublic       bool      `json:"is_public" gorm:"default:true;index"`
	LikesCount     int64     `json:"likes_count" gorm:"default:0"`
	FavoritesCount int64     `json:"favorites_count" gorm:"default:0"`
	CommentsCount  int64     `json:"comments_count" gorm:"default:0"`
	RepostCount    int64     `json:"repost_count" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (Image) TableName() string {
	return "images"
}

// Album 相册
type Album struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID      int64     `json:"owner_id" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"type:varchar(200);not null"`
	Description  string    `json:"description" gorm:"type:text"`
	CoverImageID int64     `json:"cover_image_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (Album) TableName() string {
	return "albums"
}

// Comment 评论
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ImageID   int64     `json:"image_id" gorm:"not null;index"`
	AuthorID  int64     `json:"author_id" gorm:"not null;index"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (Comment) TableName() string {
	return "comments"
}

// TrendingPage 热门榜一页
type TrendingPage struct {
	Images   []*Image `json:"images"`
	Total    int64    `json:"total"`
	Page     int32    `json:"page"`
	PageSize int32    `json:"page_size"`
	Pages    int32    `json:"pages"`
}

// CommentEvent 评论事件，与互动事件同构，发往同一主题
type CommentEvent struct {
	EventType       string    `json:"event_type"`
	UserID          int64     `json:"user_id"`
	ObjectID        int64     `json:"object_id"`
	ObjectType      string    `json:"object_type"`
	InteractionType string    `json:"interaction_type"`
	TargetOwnerID   int64     `json:"target_owner_id"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventKey 事件分区键
func (e *CommentEvent) EventKey() string {
	return fmt.Sprintf("%d:%d:%s", e.UserID, e.ObjectID, e.InteractionType)
}

// TrendingLess 热门榜的规范比较器
// SQL排序表达式与这里必须保持同一语义，测试以此为准
func TrendingLess(a, b *Image) bool {
	if a.LikesCount != b.LikesCount {
		return a.LikesCount > b.LikesCount
	}
	if a.CommentsCount != b.CommentsCount {
		return a.CommentsCount > b.CommentsCount
	}
	if a.FavoritesCount != b.FavoritesCount {
		return a.FavoritesCount > b.FavoritesCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// SortTrending 按热门榜顺序原地排序
func SortTrending(images []*Image) {
	sort.SliceStable(images, func(i, j int) bool {
		return TrendingLess(images[i], images[j])
	})
}

// GetTrendingKey 热门榜缓存键
func GetTrendingKey(page, pageSize int32) string {
	return fmt.Sprintf("%s:%d:%d", CacheKeyTrending, page, pageSize)
}
