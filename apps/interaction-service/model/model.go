package model

import (
	"fmt"
	"time"
)

// Interaction 互动账本记录
// (user_id, object_id, interaction_type) 上的唯一约束是切换语义的唯一权威，
// 写入方永远先插入再解释冲突，不做先查后写
type Interaction struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID          int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_actor_target_kind;index:idx_actor_kind"`
	ObjectID        int64     `json:"object_id" gorm:"not null;uniqueIndex:idx_actor_target_kind;index:idx_target_kind"`
	ObjectType      string    `json:"object_type" gorm:"type:varchar(20);not null"`
	InteractionType string    `json:"interaction_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_actor_target_kind;index:idx_actor_kind,idx_target_kind"`
	Caption         string    `json:"caption" gorm:"type:text"` // 仅转发使用，可由发起者修改
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (Interaction) TableName() string {
	return "interactions"
}

// KindSpec 单个互动类型的分发规格
// 计数列、目标表、通知类型等按类型差异全部集中在这里，
// 业务流程对所有类型走同一条路径
type KindSpec struct {
	ObjectType    string // 目标对象类型
	TargetTable   string // 目标侧计数所在表
	TargetColumn  string // 目标侧计数列
	ActorTable    string // 发起者侧计数所在表（仅双边计数的类型使用）
	ActorColumn   string // 发起者侧计数列
	AllowSelf     bool   // 是否允许对自己操作
	NotifyType    string // 通知类型
	HasCaption    bool   // 是否携带可编辑的caption
	TwoSidedCount bool   // 是否双边计数
}

// KindSpecs 互动类型分发表
var KindSpecs = map[string]KindSpec{
	KindLike: {
		ObjectType:   ObjectTypeImage,
		TargetTable:  "images",
		TargetColumn: "likes_count",
		AllowSelf:    true,
		NotifyType:   "like",
	},
	KindFavorite: {
		ObjectType:   ObjectTypeImage,
		TargetTable:  "images",
		TargetColumn: "favorites_count",
		AllowSelf:    true,
		NotifyType:   "favorite",
	},
	KindFollow: {
		ObjectType:    ObjectTypeUser,
		TargetTable:   "users",
		TargetColumn:  "followers_count",
		ActorTable:    "users",
		ActorColumn:   "following_count",
		AllowSelf:     false,
		NotifyType:    "follow",
		TwoSidedCount: true,
	},
	KindRepost: {
		ObjectType:   ObjectTypeImage,
		TargetTable:  "images",
		TargetColumn: "repost_count",
		AllowSelf:    true,
		NotifyType:   "repost",
		HasCaption:   true,
	},
}

// ValidateKind 验证互动类型
func ValidateKind(kind string) bool {
	_, ok := KindSpecs[kind]
	return ok
}

// InteractionQuery 互动列表查询参数
type InteractionQuery struct {
	UserID          int64
	ObjectID        int64
	InteractionType string
	Page            int32
	PageSize        int32
}

// InteractionEvent 互动事件（发往消息队列）
type InteractionEvent struct {
	EventType       string    `json:"event_type"` // create / delete
	UserID          int64     `json:"user_id"`
	ObjectID        int64     `json:"object_id"`
	ObjectType      string    `json:"object_type"`
	InteractionType string    `json:"interaction_type"`
	TargetOwnerID   int64     `json:"target_owner_id"` // 目标归属者，通知收件人
	Caption         string    `json:"caption,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// EventKey 事件分区键，同一互动元组的事件落到同一分区保持有序
func (e *InteractionEvent) EventKey() string {
	return fmt.Sprintf("%d:%d:%s", e.UserID, e.ObjectID, e.InteractionType)
}

// ReconcileResult 计数器对账结果
type ReconcileResult struct {
	TargetID int64  `json:"target_id"`
	Kind     string `json:"kind"`
	Column   string `json:"column"`
	OldValue int64  `json:"old_value"`
	NewValue int64  `json:"new_value"`
	Drift    int64  `json:"drift"`
}

// GetUserInteractionKey 用户互动状态缓存键
func GetUserInteractionKey(userID, objectID int64, kind string) string {
	return fmt.Sprintf("%s:%d:%d:%s", CacheKeyUserInteraction, userID, objectID, kind)
}

// GetTargetCountKey 目标计数缓存键
func GetTargetCountKey(targetID int64, kind string) string {
	return fmt.Sprintf("%s:%d:%s", CacheKeyTargetCount, targetID, kind)
}
