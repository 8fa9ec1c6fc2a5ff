package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pixgram-social/apps/interaction-service/model"
	"pixgram-social/pkg/errs"
)

// ============ Mock 互动账本 ============

// mockLedger 内存账本实现，唯一约束语义与数据库一致
type mockLedger struct {
	mu      sync.Mutex
	records map[string]*model.Interaction // 唯一键 -> 记录
	byID    map[int64]*model.Interaction
	nextID  int64
}

// NewMockLedger 创建内存账本
func NewMockLedger() *mockLedger {
	return &mockLedger{
		records: make(map[string]*model.Interaction),
		byID:    make(map[int64]*model.Interaction),
		nextID:  1,
	}
}

func ledgerKey(userID, objectID int64, kind string) string {
	return fmt.Sprintf("%d:%d:%s", userID, objectID, kind)
}

func (m *mockLedger) Insert(ctx context.Context, interaction *model.Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ledgerKey(interaction.UserID, interaction.ObjectID, interaction.InteractionType)
	if _, exists := m.records[key]; exists {
		return errs.ErrDuplicate
	}

	interaction.ID = m.nextID
	m.nextID++
	interaction.CreatedAt = time.Now()
	interaction.UpdatedAt = interaction.CreatedAt

	clone := *interaction
	m.records[key] = &clone
	m.byID[clone.ID] = &clone
	return nil
}

func (m *mockLedger) Remove(ctx context.Context, userID, objectID int64, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ledgerKey(userID, objectID, kind)
	record, exists := m.records[key]
	if !exists {
		return errs.ErrNotFound
	}
	delete(m.records, key)
	delete(m.byID, record.ID)
	return nil
}

func (m *mockLedger) Get(ctx context.Context, userID, objectID int64, kind string) (*model.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.records[ledgerKey(userID, objectID, kind)]
	if !exists {
		return nil, errs.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *mockLedger) GetByID(ctx context.Context, id int64) (*model.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.byID[id]
	if !exists {
		return nil, errs.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (m *mockLedger) Exists(ctx context.Context, userID, objectID int64, kind string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.records[ledgerKey(userID, objectID, kind)]
	return exists, nil
}

func (m *mockLedger) UpdateCaption(ctx context.Context, id int64, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.byID[id]
	if !exists {
		return errs.ErrNotFound
	}
	record.Caption = caption
	record.UpdatedAt = time.Now()
	return nil
}

func (m *mockLedger) ListByActor(ctx context.Context, query *model.InteractionQuery) ([]*model.Interaction, int64, error) {
	return m.list(func(r *model.Interaction) bool {
		return r.UserID == query.UserID &&
			(query.InteractionType == "" || r.InteractionType == query.InteractionType)
	}, query)
}

func (m *mockLedger) ListByTarget(ctx context.Context, query *model.InteractionQuery) ([]*model.Interaction, int64, error) {
	return m.list(func(r *model.Interaction) bool {
		return r.ObjectID == query.ObjectID &&
			(query.InteractionType == "" || r.InteractionType == query.InteractionType)
	}, query)
}

func (m *mockLedger) list(match func(*model.Interaction) bool, query *model.InteractionQuery) ([]*model.Interaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Interaction
	for _, record := range m.records {
		if match(record) {
			clone := *record
			matched = append(matched, &clone)
		}
	}

	// 与SQL一致：时间倒序，同时间按ID倒序保证稳定
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if query.Page > 0 && query.PageSize > 0 {
		start := int((query.Page - 1) * query.PageSize)
		if start >= len(matched) {
			return []*model.Interaction{}, total, nil
		}
		end := start + int(query.PageSize)
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}

	return matched, total, nil
}

func (m *mockLedger) CountByTarget(ctx context.Context, objectID int64, kind string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, record := range m.records {
		if record.ObjectID == objectID && record.InteractionType == kind {
			count++
		}
	}
	return count, nil
}

func (m *mockLedger) CountByActor(ctx context.Context, userID int64, kind string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, record := range m.records {
		if record.UserID == userID && record.InteractionType == kind {
			count++
		}
	}
	return count, nil
}

// ============ Mock 计数器 ============

// mockCounters 内存计数器，保留零下界守卫语义
type mockCounters struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMockCounters 创建内存计数器
func NewMockCounters() *mockCounters {
	return &mockCounters{values: make(map[string]int64)}
}

func counterKey(table, column string, id int64) string {
	return fmt.Sprintf("%s.%s:%d", table, column, id)
}

func (m *mockCounters) Adjust(ctx context.Context, table, column string, id, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := counterKey(table, column, id)
	if m.values[key]+delta < 0 {
		return errs.ErrCounterUnderflow
	}
	m.values[key] += delta
	return nil
}

func (m *mockCounters) Get(ctx context.Context, table, column string, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[counterKey(table, column, id)], nil
}

func (m *mockCounters) Set(ctx context.Context, table, column string, id, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[counterKey(table, column, id)] = value
	return nil
}

// ============ Mock 内容读取 ============

// mockContent 内存目标实体表
type mockContent struct {
	mu     sync.Mutex
	owners map[string]int64 // objectType:id -> ownerID
}

// NewMockContent 创建内存内容读取器
func NewMockContent() *mockContent {
	return &mockContent{owners: make(map[string]int64)}
}

// AddTarget 注册一个目标实体
func (m *mockContent) AddTarget(objectType string, id, ownerID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.owners[fmt.Sprintf("%s:%d", objectType, id)] = ownerID
}

func (m *mockContent) TargetOwner(ctx context.Context, objectType string, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, exists := m.owners[fmt.Sprintf("%s:%d", objectType, id)]
	if !exists {
		return 0, errs.ErrNotFound
	}
	return owner, nil
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

// Value 返回缓存值与是否存在
func (m *mockCache) Value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok
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
