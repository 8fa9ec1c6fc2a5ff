package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pixgram-social/apps/interaction-service/model"
	"pixgram-social/pkg/database"
	"pixgram-social/pkg/errs"
)

// interactionDAO 互动账本数据访问实现
type interactionDAO struct {
	db *database.PostgreSQL
}

// NewInteractionDAO 创建互动账本DAO实例
func NewInteractionDAO(db *database.PostgreSQL) InteractionDAO {
	return &interactionDAO{db: db}
}

// Insert 写入账本
// 不做存在性预查，直接插入，由唯一约束裁决重复
func (d *interactionDAO) Insert(ctx context.Context, interaction *model.Interaction) error {
	if err := d.db.WithContext(ctx).Create(interaction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrDuplicate
		}
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}

// Remove 删除账本记录
func (d *interactionDAO) Remove(ctx context.Context, userID, objectID int64, kind string) error {
	result := d.db.WithContext(ctx).
		Where("user_id = ? AND object_id = ? AND interaction_type = ?", userID, objectID, kind).
		Delete(&model.Interaction{})

	if result.Error != nil {
		return fmt.Errorf("failed to remove interaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Get 按互动元组取记录
func (d *interactionDAO) Get(ctx context.Context, userID, objectID int64, kind string) (*model.Interaction, error) {
	var interaction model.Interaction
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND object_id = ? AND interaction_type = ?", userID, objectID, kind).
		First(&interaction).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &interaction, nil
}

// GetByID 按主键取记录
func (d *interactionDAO) GetByID(ctx context.Context, id int64) (*model.Interaction, error) {
	var interaction model.Interaction
	err := d.db.WithContext(ctx).First(&interaction, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &interaction, nil
}

// Exists 互动是否存在
func (d *interactionDAO) Exists(ctx context.Context, userID, objectID int64, kind string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("user_id = ? AND object_id = ? AND interaction_type = ?", userID, objectID, kind).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateCaption 更新转发文案
func (d *interactionDAO) UpdateCaption(ctx context.Context, id int64, caption string) error {
	result := d.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("id = ?", id).
		Update("caption", caption)

	if result.Error != nil {
		return fmt.Errorf("failed to update caption: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListByActor 按发起者分页查询，按时间倒序
func (d *interactionDAO) ListByActor(ctx context.Context, query *model.InteractionQuery) ([]*model.Interaction, int64, error) {
	dbQuery := d.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("user_id = ?", query.UserID)

	if query.InteractionType != "" {
		dbQuery = dbQuery.Where("interaction_type = ?", query.InteractionType)
	}

	return d.paginate(dbQuery, query)
}

// ListByTarget 按目标分页查询，按时间倒序
func (d *interactionDAO) ListByTarget(ctx context.Context, query *model.InteractionQuery) ([]*model.Interaction, int64, error) {
	dbQuery := d.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("object_id = ?", query.ObjectID)

	if query.InteractionType != "" {
		dbQuery = dbQuery.Where("interaction_type = ?", query.InteractionType)
	}

	return d.paginate(dbQuery, query)
}

// paginate 统一分页执行
func (d *interactionDAO) paginate(dbQuery *gorm.DB, query *model.InteractionQuery) ([]*model.Interaction, int64, error) {
	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if query.Page > 0 && query.PageSize > 0 {
		offset := (query.Page - 1) * query.PageSize
		dbQuery = dbQuery.Offset(int(offset)).Limit(int(query.PageSize))
	}

	var interactions []*model.Interaction
	err := dbQuery.Order("created_at DESC").Find(&interactions).Error
	return interactions, total, err
}

// CountByTarget 账本中目标侧的真实计数
func (d *interactionDAO) CountByTarget(ctx context.Context, objectID int64, kind string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("object_id = ? AND interaction_type = ?", objectID, kind).
		Count(&count).Error
	return count, err
}

// CountByActor 账本中发起者侧的真实计数
func (d *interactionDAO) CountByActor(ctx context.Context, userID int64, kind string) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("user_id = ? AND interaction_type = ?", userID, kind).
		Count(&count).Error
	return count, err
}
