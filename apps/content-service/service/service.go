package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pixgram-social/apps/content-service/dao"
	"pixgram-social/apps/content-service/model"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/logger"
)

// EventPublisher 事件发布接口
type EventPublisher interface {
	SendMessage(topic string, key, value []byte) error
}

// Cache 缓存接口，pkg/redis.RedisClient实现
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service 内容服务
type Service struct {
	content  dao.ContentDAO
	comments dao.CommentDAO
	cache    Cache
	producer EventPublisher
	logger   logger.Logger
}

// NewService 创建内容服务实例
func NewService(content dao.ContentDAO, comments dao.CommentDAO,
	cache Cache, producer EventPublisher, log logger.Logger) *Service {
	return &Service{
		content:  content,
		comments: comments,
		cache:    cache,
		producer: producer,
		logger:   log,
	}
}

// assertOwner 归属校验
// 调用前目标必须已确认存在，存在性报错永远先于权限报错
func assertOwner(ownerID, actorID int64) error {
	if ownerID != actorID {
		return errs.ErrForbidden
	}
	return nil
}

// CreateImage 创建图片
func (s *Service) CreateImage(ctx context.Context, actorID int64, image *model.Image) (*model.Image, error) {
	if actorID <= 0 {
		return nil, fmt.Errorf("%w: actor is required", errs.ErrInvalidParam)
	}
	if image.StorageKey == "" {
		return nil, fmt.Errorf("%w: storage key is required", errs.ErrInvalidParam)
	}

	image.AuthorID = actorID
	if err := s.content.CreateImage(ctx, image); err != nil {
		return nil, err
	}

	s.invalidateTrendingCache(ctx)
	return image, nil
}

// GetImage 获取图片
// 私有图片只有作者可见
func (s *Service) GetImage(ctx context.Context, actorID, imageID int64) (*model.Image, error) {
	image, err := s.content.GetImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if !image.IsPublic {
		if err := assertOwner(image.AuthorID, actorID); err != nil {
			return nil, err
		}
	}
	return image, nil
}

// UpdateImage 更新图片
func (s *Service) UpdateImage(ctx context.Context, actorID, imageID int64, title, description string, isPublic *bool) (*model.Image, error) {
	image, err := s.content.GetImage(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if err := assertOwner(image.AuthorID, actorID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if title != "" {
		updates["title"] = title
	}
	if description != "" {
		updates["description"] = description
	}
	if isPublic != nil {
		updates["is_public"] = *isPublic
	}
	if len(updates) == 0 {
		return image, nil
	}

	if err := s.content.UpdateImage(ctx, imageID, updates); err != nil {
		return nil, err
	}

	s.invalidateTrendingCache(ctx)
	return s.content.GetImage(ctx, imageID)
}

// DeleteImage 删除图片
func (s *Service) DeleteImage(ctx context.Context, actorID, imageID int64) error {
	image, err := s.content.GetImage(ctx, imageID)
	if err != nil {
		return err
	}
	if err := assertOwner(image.AuthorID, actorID); err != nil {
		return err
	}

	if err := s.content.DeleteImage(ctx, imageID); err != nil {
		return err
	}

	s.invalidateTrendingCache(ctx)
	return nil
}

// ListImagesByAuthor 作者图片列表
func (s *Service) ListImagesByAuthor(ctx context.Context, authorID int64, page, pageSize int32) ([]*model.Image, int64, error) {
	if authorID <= 0 {
		return nil, 0, fmt.Errorf("%w: author is required", errs.ErrInvalidParam)
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.content.ListImagesByAuthor(ctx, authorID, page, pageSize)
}

// CreateAlbum 创建相册
func (s *Service) CreateAlbum(ctx context.Context, actorID int64, album *model.Album) (*model.Album, error) {
	if actorID <= 0 {
		return nil, fmt.Errorf("%w: actor is required", errs.ErrInvalidParam)
	}
	if album.Title == "" {
		return nil, fmt.Errorf("%w: title is required", errs.ErrInvalidParam)
	}

	album.OwnerID = actorID
	if err := s.content.CreateAlbum(ctx, album); err != nil {
		return nil, err
	}
	return album, nil
}

// GetAlbum 获取相册
func (s *Service) GetAlbum(ctx context.Context, albumID int64) (*model.Album, error) {
	return s.content.GetAlbum(ctx, albumID)
}

// UpdateAlbum 更新相册
func (s *Service) UpdateAlbum(ctx context.Context, actorID, albumID int64, title, description string, coverImageID int64) (*model.Album, error) {
	album, err := s.content.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if err := assertOwner(album.OwnerID, actorID); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if title != "" {
		updates["title"] = title
	}
	if description != "" {
		updates["description"] = description
	}
	if coverImageID > 0 {
		updates["cover_image_id"] = coverImageID
	}
	if len(updates) == 0 {
		return album, nil
	}

	if err := s.content.UpdateAlbum(ctx, albumID, updates); err != nil {
		return nil, err
	}
	return s.content.GetAlbum(ctx, albumID)
}

// DeleteAlbum 删除相册
func (s *Service) DeleteAlbum(ctx context.Context, actorID, albumID int64) error {
	album, err := s.content.GetAlbum(ctx, albumID)
	if err != nil {
		return err
	}
	if err := assertOwner(album.OwnerID, actorID); err != nil {
		return err
	}
	return s.content.DeleteAlbum(ctx, albumID)
}

// Trending 热门榜
// 纯读，排序只看计数快照，不做时间衰减。
// 只缓存默认页长的前几页，保证作废时键完全可枚举；
// 非默认页长直接读库，不会留下作废不到的缓存
func (s *Service) Trending(ctx context.Context, page, pageSize int32) (*model.TrendingPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	cacheable := page <= model.TrendingCachedPages && pageSize == model.DefaultPageSize

	cacheKey := model.GetTrendingKey(page, pageSize)
	if s.cache != nil && cacheable {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var result model.TrendingPage
			if json.Unmarshal([]byte(cached), &result) == nil {
				return &result, nil
			}
		}
	}

	images, total, err := s.content.RankTrending(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to rank trending: %w", err)
	}

	result := &model.TrendingPage{
		Images:   images,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pageCount(total, pageSize),
	}

	if s.cache != nil && cacheable {
		if data, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, cacheKey, string(data), time.Duration(model.CacheExpireTrending)*time.Second)
		}
	}

	return result, nil
}

// invalidateTrendingCache 内容变更后作废热门榜缓存
func (s *Service) invalidateTrendingCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, model.TrendingCachedPages)
	for page := int32(1); page <= model.TrendingCachedPages; page++ {
		keys = append(keys, model.GetTrendingKey(page, model.DefaultPageSize))
	}
	s.cache.Del(ctx, keys...)
}

// pageCount 总页数，向上取整
func pageCount(total int64, pageSize int32) int32 {
	if pageSize <= 0 {
		return 0
	}
	return int32((total + int64(pageSize) - 1) / int64(pageSize))
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
