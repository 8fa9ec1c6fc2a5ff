package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pixgram-social/apps/content-service/model"
	"pixgram-social/pkg/database"
	"pixgram-social/pkg/errs"
)

// contentDAO 内容实体数据访问实现
type contentDAO struct {
	db *database.PostgreSQL
}

// NewContentDAO 创建内容DAO实例
func NewContentDAO(db *database.PostgreSQL) ContentDAO {
	return &contentDAO{db: db}
}

// CreateUser 创建用户
func (d *contentDAO) CreateUser(ctx context.Context, user *model.User) error {
	if err := d.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser 获取用户
func (d *contentDAO) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	if err := d.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateImage 创建图片
func (d *contentDAO) CreateImage(ctx context.Context, image *model.Image) error {
	if err := d.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	return nil
}

// GetImage 获取图片
func (d *contentDAO) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	var image model.Image
	if err := d.db.WithContext(ctx).First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &image, nil
}

// UpdateImage 更新图片字段
func (d *contentDAO) UpdateImage(ctx context.Context, id int64, updates map[string]interface{}) error {
	result := d.db.WithContext(ctx).Model(&model.Image{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteImage 删除图片
func (d *contentDAO) DeleteImage(ctx context.Context, id int64) error {
	result := d.db.WithContext(ctx).Delete(&model.Image{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListImagesByAuthor 作者图片列表，时间倒序
func (d *contentDAO) ListImagesByAuthor(ctx context.Context, authorID int64, page, pageSize int32) ([]*model.Image, int64, error) {
	dbQuery := d.db.WithContext(ctx).Model(&model.Image{}).
		Where("author_id = ?", authorID)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var images []*model.Image
	offset := (page - 1) * pageSize
	err := dbQuery.Order("created_at DESC, id DESC").
		Offset(int(offset)).Limit(int(pageSize)).
		Find(&images).Error
	return images, total, err
}

// CreateAlbum 创建相册
func (d *contentDAO) CreateAlbum(ctx context.Context, album *model.Album) error {
	if err := d.db.WithContext(ctx).Create(album).Error; err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}
	return nil
}

// GetAlbum 获取相册
func (d *contentDAO) GetAlbum(ctx context.Context, id int64) (*model.Album, error) {
	var album model.Album
	if err := d.db.WithContext(ctx).First(&album, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &album, nil
}

// UpdateAlbum 更新相册字段
func (d *contentDAO) UpdateAlbum(ctx context.Context, id int64, updates map[string]interface{}) error {
	result := d.db.WithContext(ctx).Model(&model.Album{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update album: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteAlbum 删除相册
func (d *contentDAO) DeleteAlbum(ctx context.Context, id int64) error {
	result := d.db.WithContext(ctx).Delete(&model.Album{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete album: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// RankTrending 热门榜分页
// 排序完全交给SQL，比较语义与model.TrendingLess一致
func (d *contentDAO) RankTrending(ctx context.Context, page, pageSize int32) ([]*model.Image, int64, error) {
	dbQuery := d.db.WithContext(ctx).Model(&model.Image{}).
		Where("is_public = ?", true)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var images []*model.Image
	offset := (page - 1) * pageSize
	err := dbQuery.Order(model.TrendingOrderExpr).
		Offset(int(offset)).Limit(int(pageSize)).
		Find(&images).Error
	return images, total, err
}
