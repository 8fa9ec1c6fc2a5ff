package dao

import (
	"context"

	"pixgram-social/apps/interaction-service/model"
)

// InteractionDAO 互动账本数据访问接口
type InteractionDAO interface {
	// Insert 写入账本，唯一约束冲突返回errs.ErrDuplicate
	Insert(ctx context.Context, interaction *model.Interaction) error
	// Remove 删除账本记录，无行受影响返回errs.ErrNotFound
	Remove(ctx context.Context, userID, objectID int64, kind string) error
	// Get 按互动元组取记录
	Get(ctx context.Context, userID, objectID int64, kind string) (*model.Interaction, error)
	// GetByID 按主键取记录
	GetByID(ctx context.Context, id int64) (*model.Interaction, error)
	// Exists 互动是否存在
	Exists(ctx context.Context, userID, objectID int64, kind string) (bool, error)
	// UpdateCaption 更新转发文案
	UpdateCaption(ctx context.Context, id int64, caption string) error
	// ListByActor 按发起者分页查询
	ListByActor(ctx context.Context, query *model.InteractionQuery) ([]*model.Interaction, int64, error)
	// ListByTarget 按目标分页查询
	ListByTarget(ctx context.Context, query *model.InteractionQuery) ([]*model.Interaction, int64, error)
	// CountByTarget 账本中目标侧的真实计数
	CountByTarget(ctx context.Context, objectID int64, kind string) (int64, error)
	// CountByActor 账本中发起者侧的真实计数
	CountByActor(ctx context.Context, userID int64, kind string) (int64, error)
}

// CounterDAO 目标实体上冗余计数的维护接口
type CounterDAO interface {
	// Adjust 原子增减，递减越过零界返回errs.ErrCounterUnderflow
	Adjust(ctx context.Context, table, column string, id, delta int64) error
	// Get 读当前计数
	Get(ctx context.Context, table, column string, id int64) (int64, error)
	// Set 覆盖计数（对账用）
	Set(ctx context.Context, table, column string, id, value int64) error
}

// ContentReader 目标实体只读访问，互动前校验目标存在并取归属者
type ContentReader interface {
	// TargetOwner 返回目标归属者，目标不存在返回errs.ErrNotFound
	TargetOwner(ctx context.Context, objectType string, id int64) (int64, error)
}
