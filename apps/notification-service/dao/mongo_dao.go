package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pixgram-social/apps/notification-service/model"
	"pixgram-social/pkg/database"
	"pixgram-social/pkg/errs"
)

// mongoDAO 通知收件箱MongoDB实现
type mongoDAO struct {
	db *database.MongoDB
}

// NewMongoDAO 创建通知DAO实例
func NewMongoDAO(db *database.MongoDB) NotificationDAO {
	return &mongoDAO{db: db}
}

func (d *mongoDAO) collection() *mongo.Collection {
	return d.db.GetCollection(model.CollectionNotifications)
}

// Insert 写入通知
func (d *mongoDAO) Insert(ctx context.Context, notification *model.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	if _, err := d.collection().InsertOne(ctx, notification); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// GetByID 按通知ID取条目
func (d *mongoDAO) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	var notification model.Notification
	err := d.collection().FindOne(ctx, bson.M{"notification_id": id}).Decode(&notification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

// List 收件人通知分页，时间倒序
func (d *mongoDAO) List(ctx context.Context, recipientID int64, page, pageSize int32) ([]*model.Notification, int64, error) {
	filter := bson.M{"recipient_id": recipientID}

	total, err := d.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "notification_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := d.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []*model.Notification
	for cursor.Next(ctx) {
		var notification model.Notification
		if err := cursor.Decode(&notification); err != nil {
			continue
		}
		notifications = append(notifications, &notification)
	}

	return notifications, total, nil
}

// MarkRead 单条置为已读
func (d *mongoDAO) MarkRead(ctx context.Context, id int64) error {
	result, err := d.collection().UpdateOne(ctx,
		bson.M{"notification_id": id},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// MarkAllRead 收件人全部置为已读
func (d *mongoDAO) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	result, err := d.collection().UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark all read: %w", err)
	}
	return result.ModifiedCount, nil
}

// UnreadCount 收件人未读数
func (d *mongoDAO) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	count, err := d.collection().CountDocuments(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread: %w", err)
	}
	return count, nil
}

// Delete 删除单条通知
func (d *mongoDAO) Delete(ctx context.Context, id int64) error {
	result, err := d.collection().DeleteOne(ctx, bson.M{"notification_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}
