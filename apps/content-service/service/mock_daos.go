package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pixgram-social/apps/content-service/model"
	"pixgram-social/pkg/errs"
)

// ============ Mock 内容DAO ============

// mockContentDAO 内存内容实体实现
type mockContentDAO struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	images map[int64]*model.Image
	albums map[int64]*model.Album
	nextID int64
}

// NewMockContentDAO 创建内存内容DAO
func NewMockContentDAO() *mockContentDAO {
	return &mockContentDAO{
		users:  make(map[int64]*model.User),
		images: make(map[int64]*model.Image),
		albums: make(map[int64]*model.Album),
		nextID: 1,
	}
}

func (m *mockContentDAO) allocID() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockContentDAO) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = m.allocID()
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *mockContentDAO) GetUser(ctx context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *mockContentDAO) CreateImage(ctx context.Context, image *model.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	image.ID = m.allocID()
	if image.CreatedAt.IsZero() {
		image.CreatedAt = time.Now()
	}
	image.UpdatedAt = image.CreatedAt
	clone := *image
	m.images[image.ID] = &clone
	return nil
}

func (m *mockContentDAO) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	image, ok := m.images[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	clone := *image
	return &clone, nil
}

func (m *mockContentDAO) UpdateImage(ctx context.Context, id int64, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	image, ok := m.images[id]
	if !ok {
		return errs.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "title":
			image.Title = value.(string)
		case "description":
			image.Description = value.(string)
		case "is_public":
			image.IsPublic = value.(bool)
		}
	}
	image.UpdatedAt = time.Now()
	return nil
}

func (m *mockContentDAO) DeleteImage(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.images, id)
	return nil
}

func (m *mockContentDAO) ListImagesByAuthor(ctx context.Context, authorID int64, page, pageSize int32) ([]*model.Image, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Image
	for _, image := range m.images {
		if image.AuthorID == authorID {
			clone := *image
			matched = append(matched, &clone)
		}
	}
	total := int64(len(matched))
	return paginateImages(matched, page, pageSize), total, nil
}

func (m *mockContentDAO) CreateAlbum(ctx context.Context, album *model.Album) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	album.ID = m.allocID()
	clone := *album
	m.albums[album.ID] = &clone
	return nil
}

func (m *mockContentDAO) GetAlbum(ctx context.Context, id int64) (*model.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	album, ok := m.albums[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	clone := *album
	return &clone, nil
}

func (m *mockContentDAO) UpdateAlbum(ctx context.Context, id int64, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	album, ok := m.albums[id]
	if !ok {
		return errs.ErrNotFound
	}
	for key, value := range updates {
		switch key {
		case "title":
			album.Title = value.(string)
		case "description":
			album.Description = value.(string)
		case "cover_image_id":
			album.CoverImageID = value.(int64)
		}
	}
	return nil
}

func (m *mockContentDAO) DeleteAlbum(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.albums[id]; !ok {
		return errs.ErrNotFound
	}
	delete(m.albums, id)
	return nil
}

// RankTrending 与SQL排序同语义：规范比较器排序后分页
func (m *mockContentDAO) RankTrending(ctx context.Context, page, pageSize int32) ([]*model.Image, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var public []*model.Image
	for _, image := range m.images {
		if image.IsPublic {
			clone := *image
			public = append(public, &clone)
		}
	}
	model.SortTrending(public)

	total := int64(len(public))
	return paginateImages(public, page, pageSize), total, nil
}

// AdjustCommentsCount 测试辅助：直接改评论计数
func (m *mockContentDAO) AdjustCommentsCount(id, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if image, ok := m.images[id]; ok {
		image.CommentsCount += delta
	}
}

func paginateImages(images []*model.Image, page, pageSize int32) []*model.Image {
	if page <= 0 || pageSize <= 0 {
		return images
	}
	start := int((page - 1) * pageSize)
	if start >= len(images) {
		return []*model.Image{}
	}
	end := start + int(pageSize)
	if end > len(images) {
		end = len(images)
	}
	return images[start:end]
}

// ============ Mock 评论DAO ============

// mockCommentDAO 内存评论实现，计数调整落到contentDAO
type mockCommentDAO struct {
	mu       sync.Mutex
	comments map[int64]*model.Comment
	nextID   int64
	content  *mockContentDAO
}

// NewMockCommentDAO 创建内存评论DAO
func NewMockCommentDAO(content *mockContentDAO) *mockCommentDAO {
	return &mockCommentDAO{
		comments: make(map[int64]*model.Comment),
		nextID:   1,
		content:  content,
	}
}

func (m *mockCommentDAO) Create(ctx context.Context, comment *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment.ID = m.nextID
	m.nextID++
	comment.CreatedAt = time.Now()
	clone := *comment
	m.comments[comment.ID] = &clone

	m.content.AdjustCommentsCount(comment.ImageID, 1)
	return nil
}

func (m *mockCommentDAO) Get(ctx context.Context, id int64) (*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	clone := *comment
	return &clone, nil
}

func (m *mockCommentDAO) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment, ok := m.comments[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(m.comments, id)
	m.content.AdjustCommentsCount(comment.ImageID, -1)
	return nil
}

func (m *mockCommentDAO) ListByImage(ctx context.Context, imageID int64, page, pageSize int32) ([]*model.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Comment
	for _, comment := range m.comments {
		if comment.ImageID == imageID {
			clone := *comment
			matched = append(matched, &clone)
		}
	}
	return matched, int64(len(matched)), nil
}

// ============ Mock 缓存 ============

// errCacheMiss 缓存未命中
var errCacheMiss = fmt.Errorf("cache miss")

// mockCache 内存缓存实现
type mockCache struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMockCache 创建内存缓存
func NewMockCache() *mockCache {
	return &mockCache{values: make(map[string]string)}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	if !ok {
		return "", errCacheMiss
	}
	return value, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = fmt.Sprint(value)
	return nil
}

func (m *mockCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

// Has 判断键是否在缓存中
func (m *mockCache) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

// ============ Mock 事件发布 ============

// mockPublisher 捕获发出的消息
type mockPublisher struct {
	mu       sync.Mutex
	messages []publishedMessage
}

type publishedMessage struct {
	Topic string
	Key   string
	Value []byte
}

// NewMockPublisher 创建事件捕获器
func NewMockPublisher() *mockPublisher {
	return &mockPublisher{}
}

func (m *mockPublisher) SendMessage(topic string, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, publishedMessage{
		Topic: topic,
		Key:   string(key),
		Value: append([]byte(nil), value...),
	})
	return nil
}

// Messages 返回已捕获消息的副本
func (m *mockPublisher) Messages() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publishedMessage(nil), m.messages...)
}
