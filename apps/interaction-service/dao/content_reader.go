package dao

import (
	"context"
	"fmt"

	"pixgram-social/apps/interaction-service/model"
	"pixgram-social/pkg/database"
	"pixgram-social/pkg/errs"
)

// contentReader 目标实体只读访问实现
// 直接读内容侧的表，互动与内容共用同一个PostgreSQL实例
type contentReader struct {
	db *database.PostgreSQL
}

// NewContentReader 创建内容只读DAO实例
func NewContentReader(db *database.PostgreSQL) ContentReader {
	return &contentReader{db: db}
}

// TargetOwner 返回目标归属者
// 用户目标的归属者就是用户自身
func (d *contentReader) TargetOwner(ctx context.Context, objectType string, id int64) (int64, error) {
	switch objectType {
	case model.ObjectTypeImage:
		var ownerID int64
		result := d.db.WithContext(ctx).
			Raw("SELECT author_id FROM images WHERE id = ?", id).
			Scan(&ownerID)
		if result.Error != nil {
			return 0, fmt.Errorf("failed to read image owner: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return 0, errs.ErrNotFound
		}
		return ownerID, nil

	case model.ObjectTypeUser:
		var count int64
		result := d.db.WithContext(ctx).
			Raw("SELECT COUNT(*) FROM users WHERE id = ?", id).
			Scan(&count)
		if result.Error != nil {
			return 0, fmt.Errorf("failed to check user: %w", result.Error)
		}
		if count == 0 {
			return 0, errs.ErrNotFound
		}
		return id, nil

	default:
		return 0, fmt.Errorf("%w: unknown object type %s", errs.ErrInvalidParam, objectType)
	}
}
