package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pixgram-social/apps/notification-service/model"
	"pixgram-social/pkg/errs"
)

// ============ Mock 通知收件箱 ============

// mockInbox 内存收件箱实现
type mockInbox struct {
	mu            sync.Mutex
	notifications map[int64]*model.Notification
}

// NewMockInbox 创建内存收件箱
func NewMockInbox() *mockInbox {
	return &mockInbox{notifications: make(map[int64]*model.Notification)}
}

func (m *mockInbox) Insert(ctx context.Context, notification *model.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	clone := *notification
	m.notifications[notification.ID] = &clone
	return nil
}

func (m *mockInbox) GetByID(ctx context.Context, id int64) (*model.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	notification, exists := m.notifications[id]
	if !exists {
		return nil, errs.ErrNotFound
	}
	clone := *notification
	return &clone, nil
}

func (m *mockInbox) List(ctx context.Context, recipientID int64, page, pageSize int32) ([]*model.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Notification
	for _, notification := range m.notifications {
		if notification.RecipientID == recipientID {
			clone := *notification
			matched = append(matched, &clone)
		}
	}

	// 与Mongo一致：时间倒序，同时间按ID倒序保证稳定
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if page > 0 && pageSize > 0 {
		start := int((page - 1) * pageSize)
		if start >= len(matched) {
			return []*model.Notification{}, total, nil
		}
		end := start + int(pageSize)
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}

	return matched, total, nil
}

func (m *mockInbox) MarkRead(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	notification, exists := m.notifications[id]
	if !exists {
		return errs.ErrNotFound
	}
	notification.IsRead = true
	return nil
}

func (m *mockInbox) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var marked int64
	for _, notification := range m.notifications {
		if notification.RecipientID == recipientID && !notification.IsRead {
			notification.IsRead = true
			marked++
		}
	}
	return marked, nil
}

func (m *mockInbox) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, notification := range m.notifications {
		if notification.RecipientID == recipientID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockInbox) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.notifications[id]; !exists {
		return errs.ErrNotFound
	}
	delete(m.notifications, id)
	return nil
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

// ============ Mock ID生成 ============

// mockIDGen 递增ID生成器
type mockIDGen struct {
	mu   sync.Mutex
	next int64
}

// NewMockIDGen 创建递增ID生成器
func NewMockIDGen() *mockIDGen {
	return &mockIDGen{next: 1}
}

func (m *mockIDGen) Generate() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.next
	m.next++
	return id
}
