package dao

import (
	"context"

	"pixgram-social/apps/notification-service/model"
)

// NotificationDAO 通知收件箱数据访问接口
type NotificationDAO interface {
	// Insert 写入通知
	Insert(ctx context.Context, notification *model.Notification) error
	// GetByID 按通知ID取条目，不存在返回errs.ErrNotFound
	GetByID(ctx context.Context, id int64) (*model.Notification, error)
	// List 收件人通知分页，时间倒序
	List(ctx context.Context, recipientID int64, page, pageSize int32) ([]*model.Notification, int64, error)
	// MarkRead 单条置为已读
	MarkRead(ctx context.Context, id int64) error
	// MarkAllRead 收件人全部置为已读，返回置位条数
	MarkAllRead(ctx context.Context, recipientID int64) (int64, error)
	// UnreadCount 收件人未读数
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)
	// Delete 删除单条通知
	Delete(ctx context.Context, id int64) error
}
