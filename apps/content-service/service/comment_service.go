package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pixgram-social/apps/content-service/model"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/logger"
)

// CreateComment 发表评论
// 评论写入与图片评论计数同事务，评论事件与互动事件走同一主题
func (s *Service) CreateComment(ctx context.Context, actorID, imageID int64, text string) (*model.Comment, error) {
	if actorID <= 0 {
		return nil, fmt.Errorf("%w: actor is required", errs.ErrInvalidParam)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", errs.ErrInvalidParam)
	}

	image, err := s.content.GetImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if !image.IsPublic {
		if err := assertOwner(image.AuthorID, actorID); err != nil {
			return nil, err
		}
	}

	comment := &model.Comment{
		ImageID:  imageID,
		AuthorID: actorID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.publishCommentEvent(ctx, comment, image.AuthorID)
	s.invalidateTrendingCache(ctx)

	return comment, nil
}

// DeleteComment 删除评论
// 先判存在再判归属
func (s *Service) DeleteComment(ctx context.Context, actorID, commentID int64) error {
	comment, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if err := assertOwner(comment.AuthorID, actorID); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	s.invalidateTrendingCache(ctx)
	return nil
}

// ListComments 评论列表
func (s *Service) ListComments(ctx context.Context, imageID int64, page, pageSize int32) ([]*model.Comment, int64, error) {
	if imageID <= 0 {
		return nil, 0, fmt.Errorf("%w: image is required", errs.ErrInvalidParam)
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.comments.ListByImage(ctx, imageID, page, pageSize)
}

// publishCommentEvent 发布评论事件，下游通知消费
func (s *Service) publishCommentEvent(ctx context.Context, comment *model.Comment, imageOwnerID int64) {
	if s.producer == nil {
		return
	}

	event := &model.CommentEvent{
		EventType:       model.EventTypeCreate,
		UserID:          comment.AuthorID,
		ObjectID:        comment.ImageID,
		ObjectType:      model.ObjectTypeImage,
		InteractionType: model.KindComment,
		TargetOwnerID:   imageOwnerID,
		Timestamp:       time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal comment event",
			logger.F("error", err.Error()),
			logger.F("commentID", comment.ID))
		return
	}

	if err := s.producer.SendMessage(model.TopicInteractionEvents, []byte(event.EventKey()), eventData); err != nil {
		s.logger.Error(ctx, "Failed to send comment event",
			logger.F("error", err.Error()),
			logger.F("topic", model.TopicInteractionEvents))
	}
}
