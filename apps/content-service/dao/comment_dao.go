package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pixgram-social/apps/content-service/model"
	"pixgram-social/pkg/database"
	"pixgram-social/pkg/errs"
)

// commentDAO 评论数据访问实现
type commentDAO struct {
	db *database.PostgreSQL
}

// NewCommentDAO 创建评论DAO实例
func NewCommentDAO(db *database.PostgreSQL) CommentDAO {
	return &commentDAO{db: db}
}

// Create 写入评论并递增图片评论计数，同一事务
func (d *commentDAO) Create(ctx context.Context, comment *model.Comment) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		result := tx.Exec(
			"UPDATE images SET comments_count = comments_count + 1, updated_at = ? WHERE id = ?",
			time.Now(), comment.ImageID)
		if result.Error != nil {
			return fmt.Errorf("failed to increment comments_count: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

// Get 按主键取评论
func (d *commentDAO) Get(ctx context.Context, id int64) (*model.Comment, error) {
	var comment model.Comment
	if err := d.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// Delete 删除评论并递减图片评论计数，同一事务
// 递减带下界守卫，拦下的漂移向上抛而不是钳到零
func (d *commentDAO) Delete(ctx context.Context, id int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment model.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrNotFound
			}
			return err
		}

		result := tx.Delete(&model.Comment{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete comment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errs.ErrNotFound
		}

		decr := tx.Exec(
			"UPDATE images SET comments_count = comments_count - 1, updated_at = ? WHERE id = ? AND comments_count - 1 >= 0",
			time.Now(), comment.ImageID)
		if decr.Error != nil {
			return fmt.Errorf("failed to decrement comments_count: %w", decr.Error)
		}
		if decr.RowsAffected == 0 {
			return errs.ErrCounterUnderflow
		}
		return nil
	})
}

// ListByImage 按图片分页查询，时间倒序
func (d *commentDAO) ListByImage(ctx context.Context, imageID int64, page, pageSize int32) ([]*model.Comment, int64, error) {
	dbQuery := d.db.WithContext(ctx).Model(&model.Comment{}).
		Where("image_id = ?", imageID)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*model.Comment
	offset := (page - 1) * pageSize
	err := dbQuery.Order("created_at DESC, id DESC").
		Offset(int(offset)).Limit(int(pageSize)).
		Find(&comments).Error
	return comments, total, err
}
