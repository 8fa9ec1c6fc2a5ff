package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pixgram-social/apps/notification-service/dao"
	"pixgram-social/apps/notification-service/model"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/logger"
)

// IDGenerator 通知ID生成接口
type IDGenerator interface {
	Generate() int64
}

// Cache 缓存接口，pkg/redis.RedisClient实现
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service 通知服务
type Service struct {
	inbox  dao.NotificationDAO
	cache  Cache
	idGen  IDGenerator
	logger logger.Logger
}

// NewService 创建通知服务实例
func NewService(inbox dao.NotificationDAO, cache Cache, idGen IDGenerator, log logger.Logger) *Service {
	return &Service{
		inbox:  inbox,
		cache:  cache,
		idGen:  idGen,
		logger: log,
	}
}

// HandleInteractionEvent 互动事件落为收件箱通知
// 只处理create事件，取消事件直接忽略；自己对自己的互动不产生通知
func (s *Service) HandleInteractionEvent(ctx context.Context, event *model.InteractionEvent) error {
	if event.EventType != model.EventTypeCreate {
		return nil
	}
	if event.UserID == event.TargetOwnerID {
		return nil
	}

	content, ok := model.TemplateFor(event.InteractionType)
	if !ok {
		s.logger.Warn(ctx, "Skipping event with unknown interaction type",
			logger.F("interactionType", event.InteractionType))
		return nil
	}

	notification := &model.Notification{
		ID:          s.idGen.Generate(),
		RecipientID: event.TargetOwnerID,
		SenderID:    event.UserID,
		Type:        event.InteractionType,
		Content:     content,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
	if event.ObjectType == model.ObjectTypeImage {
		notification.RelatedImageID = event.ObjectID
	}

	if err := s.inbox.Insert(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	s.invalidateUnreadCache(ctx, notification.RecipientID)

	s.logger.Info(ctx, "Notification created",
		logger.F("notificationID", notification.ID),
		logger.F("recipientID", notification.RecipientID),
		logger.F("type", notification.Type))
	return nil
}

// List 收件人通知分页
func (s *Service) List(ctx context.Context, recipientID int64, page, pageSize int32) ([]*model.Notification, int64, error) {
	if recipientID <= 0 {
		return nil, 0, fmt.Errorf("%w: recipient is required", errs.ErrInvalidParam)
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.inbox.List(ctx, recipientID, page, pageSize)
}

// MarkRead 单条置为已读
// 先判存在再判归属，通知不存在的报错优先于无权限
func (s *Service) MarkRead(ctx context.Context, actorID, notificationID int64) error {
	if actorID <= 0 || notificationID <= 0 {
		return fmt.Errorf("%w: actor and notification id are required", errs.ErrInvalidParam)
	}

	notification, err := s.inbox.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientID != actorID {
		return errs.ErrForbidden
	}

	if err := s.inbox.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, actorID)
	return nil
}

// MarkAllRead 收件人全部置为已读，返回置位条数
func (s *Service) MarkAllRead(ctx context.Context, actorID int64) (int64, error) {
	if actorID <= 0 {
		return 0, fmt.Errorf("%w: actor is required", errs.ErrInvalidParam)
	}

	marked, err := s.inbox.MarkAllRead(ctx, actorID)
	if err != nil {
		return 0, err
	}
	s.invalidateUnreadCache(ctx, actorID)
	return marked, nil
}

// UnreadCount 收件人未读数，带缓存
func (s *Service) UnreadCount(ctx context.Context, actorID int64) (int64, error) {
	if actorID <= 0 {
		return 0, fmt.Errorf("%w: actor is required", errs.ErrInvalidParam)
	}

	cacheKey := model.GetUnreadCountKey(actorID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.inbox.UnreadCount(ctx, actorID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, strconv.FormatInt(count, 10),
			time.Duration(model.CacheExpireUnread)*time.Second)
	}

	return count, nil
}

// Delete 删除单条通知
// 先判存在再判归属
func (s *Service) Delete(ctx context.Context, actorID, notificationID int64) error {
	if actorID <= 0 || notificationID <= 0 {
		return fmt.Errorf("%w: actor and notification id are required", errs.ErrInvalidParam)
	}

	notification, err := s.inbox.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.RecipientID != actorID {
		return errs.ErrForbidden
	}

	if err := s.inbox.Delete(ctx, notificationID); err != nil {
		return err
	}
	s.invalidateUnreadCache(ctx, actorID)
	return nil
}

// invalidateUnreadCache 未读数缓存作废
func (s *Service) invalidateUnreadCache(ctx context.Context, recipientID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, model.GetUnreadCountKey(recipientID)); err != nil {
		s.logger.Warn(ctx, "Failed to invalidate unread cache",
			logger.F("error", err.Error()),
			logger.F("recipientID", recipientID))
	}
}

// normalizePage 分页参数归一化
func normalizePage(page, pageSize int32) (int32, int32) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}
	if pageSize > model.MaxPageSize {
		pageSize = model.MaxPageSize
	}
	return page, pageSize
}
