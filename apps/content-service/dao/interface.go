package dao

import (
	"context"

	"pixgram-social/apps/content-service/model"
)

// ContentDAO 内容实体数据访问接口
type ContentDAO interface {
	// 用户
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)

	// 图片
	CreateImage(ctx context.Context, image *model.Image) error
	GetImage(ctx context.Context, id int64) (*model.Image, error)
	UpdateImage(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteImage(ctx context.Context, id int64) error
	ListImagesByAuthor(ctx context.Context, authorID int64, page, pageSize int32) ([]*model.Image, int64, error)

	// 相册
	CreateAlbum(ctx context.Context, album *model.Album) error
	GetAlbum(ctx context.Context, id int64) (*model.Album, error)
	UpdateAlbum(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteAlbum(ctx context.Context, id int64) error

	// 热门榜，只统计公开图片
	RankTrending(ctx context.Context, page, pageSize int32) ([]*model.Image, int64, error)
}

// CommentDAO 评论数据访问接口
// 评论增删与图片评论计数在同一事务里完成
type CommentDAO interface {
	// Create 写入评论并递增图片评论计数
	Create(ctx context.Context, comment *model.Comment) error
	// Get 按主键取评论
	Get(ctx context.Context, id int64) (*model.Comment, error)
	// Delete 删除评论并递减图片评论计数，计数有下界守卫
	Delete(ctx context.Context, id int64) error
	// ListByImage 按图片分页查询
	ListByImage(ctx context.Context, imageID int64, page, pageSize int32) ([]*model.Comment, int64, error)
}
