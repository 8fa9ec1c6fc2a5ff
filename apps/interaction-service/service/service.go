package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"pixgram-social/apps/interaction-service/dao"
	"pixgram-social/apps/interaction-service/model"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/logger"
)

// EventPublisher 互动事件发布接口
type EventPublisher interface {
	SendMessage(topic string, key, value []byte) error
}

// Cache 缓存接口，pkg/redis.RedisClient实现
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service 互动服务
type Service struct {
	ledger   dao.InteractionDAO
	counters dao.CounterDAO
	content  dao.ContentReader
	cache    Cache
	producer EventPublisher
	logger   logger.Logger
}

// NewService 创建互动服务实例
func NewService(ledger dao.InteractionDAO, counters dao.CounterDAO, content dao.ContentReader,
	cache Cache, producer EventPublisher, log logger.Logger) *Service {
	return &Service{
		ledger:   ledger,
		counters: counters,
		content:  content,
		cache:    cache,
		producer: producer,
		logger:   log,
	}
}

// errToggleRaced 切换过程中撞上并发对手，整体重试一次
var errToggleRaced = errors.New("toggle raced with concurrent request")

// Toggle 切换互动状态
// 返回切换后的状态与目标当前计数。账本写入是唯一权威，
// 计数与事件都是账本之后的尽力而为，失败只记日志不回滚账本
func (s *Service) Toggle(ctx context.Context, actorID, targetID int64, kind, caption string) (bool, int64, error) {
	if actorID <= 0 || targetID <= 0 {
		return false, 0, fmt.Errorf("%w: actor and target are required", errs.ErrInvalidParam)
	}
	spec, ok := model.KindSpecs[kind]
	if !ok {
		return false, 0, fmt.Errorf("%w: unknown interaction kind %s", errs.ErrInvalidParam, kind)
	}
	if !spec.AllowSelf && actorID == targetID {
		return false, 0, fmt.Errorf("%w: cannot %s yourself", errs.ErrInvalidOperation, kind)
	}

	// 目标必须存在，顺便拿到归属者作为通知收件人
	ownerID, err := s.content.TargetOwner(ctx, spec.ObjectType, targetID)
	if err != nil {
		return false, 0, err
	}

	// 插入和删除之间可能有并发对手完成了同样的切换，
	// 整个操作重试一次，仍然失败交给调用方
	var active bool
	for attempt := 0; attempt < 2; attempt++ {
		active, err = s.toggleOnce(ctx, actorID, targetID, ownerID, kind, caption, spec)
		if err == nil {
			count := s.readCount(ctx, targetID, kind, spec)
			return active, count, nil
		}
		if !errors.Is(err, errToggleRaced) {
			return false, 0, err
		}
	}

	s.logger.Warn(ctx, "Toggle lost race twice",
		logger.F("actorID", actorID),
		logger.F("targetID", targetID),
		logger.F("kind", kind))
	return false, 0, errs.ErrConflict
}

// toggleOnce 单次切换尝试：先插入，冲突解释为取消
func (s *Service) toggleOnce(ctx context.Context, actorID, targetID, ownerID int64, kind, caption string, spec model.KindSpec) (bool, error) {
	record := &model.Interaction{
		UserID:          actorID,
		ObjectID:        targetID,
		ObjectType:      spec.ObjectType,
		InteractionType: kind,
	}
	if spec.HasCaption {
		record.Caption = caption
	}

	err := s.ledger.Insert(ctx, record)
	if err == nil {
		s.applyCounters(ctx, actorID, targetID, kind, spec, 1)
		s.publishEvent(ctx, model.EventTypeCreate, record, ownerID)
		s.clearInteractionCache(ctx, actorID, targetID, kind)
		return true, nil
	}
	if !errors.Is(err, errs.ErrDuplicate) {
		return false, err
	}

	// 记录已存在，本次调用的语义是取消
	if err := s.ledger.Remove(ctx, actorID, targetID, kind); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// 并发对手抢先删掉了
			return false, errToggleRaced
		}
		return false, err
	}
	s.applyCounters(ctx, actorID, targetID, kind, spec, -1)
	s.publishEvent(ctx, model.EventTypeDelete, record, ownerID)
	s.clearInteractionCache(ctx, actorID, targetID, kind)
	return false, nil
}

// applyCounters 账本落定后调冗余计数，失败记日志不回滚
func (s *Service) applyCounters(ctx context.Context, actorID, targetID int64, kind string, spec model.KindSpec, delta int64) {
	if err := s.counters.Adjust(ctx, spec.TargetTable, spec.TargetColumn, targetID, delta); err != nil {
		s.logger.Error(ctx, "Failed to adjust target counter",
			logger.F("error", err.Error()),
			logger.F("table", spec.TargetTable),
			logger.F("column", spec.TargetColumn),
			logger.F("targetID", targetID),
			logger.F("delta", delta))
	}

	if spec.TwoSidedCount {
		if err := s.counters.Adjust(ctx, spec.ActorTable, spec.ActorColumn, actorID, delta); err != nil {
			s.logger.Error(ctx, "Failed to adjust actor counter",
				logger.F("error", err.Error()),
				logger.F("table", spec.ActorTable),
				logger.F("column", spec.ActorColumn),
				logger.F("actorID", actorID),
				logger.F("delta", delta))
		}
	}
}

// readCount 尽力读回目标当前计数，失败返回-1，active仍然可信
func (s *Service) readCount(ctx context.Context, targetID int64, kind string, spec model.KindSpec) int64 {
	count, err := s.counters.Get(ctx, spec.TargetTable, spec.TargetColumn, targetID)
	if err != nil {
		s.logger.Warn(ctx, "Failed to read back counter",
			logger.F("error", err.Error()),
			logger.F("targetID", targetID),
			logger.F("kind", kind))
		return -1
	}
	return count
}

// Check 查询互动状态
func (s *Service) Check(ctx context.Context, actorID, targetID int64, kind string) (bool, error) {
	if actorID <= 0 || targetID <= 0 {
		return false, fmt.Errorf("%w: actor and target are required", errs.ErrInvalidParam)
	}
	if !model.ValidateKind(kind) {
		return false, fmt.Errorf("%w: unknown interaction kind %s", errs.ErrInvalidParam, kind)
	}

	cacheKey := model.GetUserInteractionKey(actorID, targetID, kind)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			return cached == "1", nil
		}
	}

	exists, err := s.ledger.Exists(ctx, actorID, targetID, kind)
	if err != nil {
		return false, fmt.Errorf("failed to check interaction: %w", err)
	}

	if s.cache != nil {
		value := "0"
		if exists {
			value = "1"
		}
		s.cache.Set(ctx, cacheKey, value, time.Duration(model.CacheExpireUserAction)*time.Second)
	}

	return exists, nil
}

// TargetCount 查询目标当前计数，带缓存
// 缓存由切换和对账作废，这里按需回填
func (s *Service) TargetCount(ctx context.Context, targetID int64, kind string) (int64, error) {
	if targetID <= 0 {
		return 0, fmt.Errorf("%w: target is required", errs.ErrInvalidParam)
	}
	spec, ok := model.KindSpecs[kind]
	if !ok {
		return 0, fmt.Errorf("%w: unknown interaction kind %s", errs.ErrInvalidParam, kind)
	}

	cacheKey := model.GetTargetCountKey(targetID, kind)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.counters.Get(ctx, spec.TargetTable, spec.TargetColumn, targetID)
	if err != nil {
		return 0, fmt.Errorf("failed to read target counter: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, strconv.FormatInt(count, 10),
			time.Duration(model.CacheExpireCount)*time.Second)
	}

	return count, nil
}

// ListByActor 获取用户发起的互动列表
func (s *Service) ListByActor(ctx context.Context, actorID int64, kind string, page, pageSize int32) ([]*model.Interaction, int64, error) {
	if actorID <= 0 {
		return nil, 0, fmt.Errorf("%w: actor is required", errs.ErrInvalidParam)
	}
	if kind != "" && !model.ValidateKind(kind) {
		return nil, 0, fmt.Errorf("%w: unknown interaction kind %s", errs.ErrInvalidParam, kind)
	}
	page, pageSize = normalizePage(page, pageSize)

	return s.ledger.ListByActor(ctx, &model.InteractionQuery{
		UserID:          actorID,
		InteractionType: kind,
		Page:            page,
		PageSize:        pageSize,
	})
}

// ListByTarget 获取目标收到的互动列表
func (s *Service) ListByTarget(ctx context.Context, targetID int64, kind string, page, pageSize int32) ([]*model.Interaction, int64, error) {
	if targetID <= 0 {
		return nil, 0, fmt.Errorf("%w: target is required", errs.ErrInvalidParam)
	}
	if kind != "" && !model.ValidateKind(kind) {
		return nil, 0, fmt.Errorf("%w: unknown interaction kind %s", errs.ErrInvalidParam, kind)
	}
	page, pageSize = normalizePage(page, pageSize)

	return s.ledger.ListByTarget(ctx, &model.InteractionQuery{
		ObjectID:        targetID,
		InteractionType: kind,
		Page:            page,
		PageSize:        pageSize,
	})
}

// UpdateRepostCaption 修改转发文案
// 先判存在再判归属，目标不存在的报错优先于无权限
func (s *Service) UpdateRepostCaption(ctx context.Context, actorID, interactionID int64, caption string) error {
	if actorID <= 0 || interactionID <= 0 {
		return fmt.Errorf("%w: actor and interaction id are required", errs.ErrInvalidParam)
	}

	record, err := s.ledger.GetByID(ctx, interactionID)
	if err != nil {
		return err
	}
	if record.InteractionType != model.KindRepost {
		return fmt.Errorf("%w: caption only applies to reposts", errs.ErrInvalidOperation)
	}
	if record.UserID != actorID {
		return errs.ErrForbidden
	}

	return s.ledger.UpdateCaption(ctx, interactionID, caption)
}

// Reconcile 计数器对账
// 以账本COUNT为准覆盖冗余计数，返回新旧值与漂移量；
// 关注类型同时对账目标的粉丝数和同一用户的关注数
func (s *Service) Reconcile(ctx context.Context, targetID int64, kind string) ([]*model.ReconcileResult, error) {
	if targetID <= 0 {
		return nil, fmt.Errorf("%w: target is required", errs.ErrInvalidParam)
	}
	spec, ok := model.KindSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown interaction kind %s", errs.ErrInvalidParam, kind)
	}

	var results []*model.ReconcileResult

	targetResult, err := s.reconcileOne(ctx, targetID, kind, spec.TargetTable, spec.TargetColumn, s.ledger.CountByTarget)
	if err != nil {
		return nil, err
	}
	results = append(results, targetResult)

	if spec.TwoSidedCount {
		actorResult, err := s.reconcileOne(ctx, targetID, kind, spec.ActorTable, spec.ActorColumn, s.ledger.CountByActor)
		if err != nil {
			return nil, err
		}
		results = append(results, actorResult)
	}

	// 对账后计数缓存作废
	if s.cache != nil {
		s.cache.Del(ctx, model.GetTargetCountKey(targetID, kind))
	}

	return results, nil
}

// reconcileOne 对账单个计数列
func (s *Service) reconcileOne(ctx context.Context, id int64, kind, table, column string,
	countFn func(context.Context, int64, string) (int64, error)) (*model.ReconcileResult, error) {

	oldValue, err := s.counters.Get(ctx, table, column, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read counter for reconcile: %w", err)
	}

	newValue, err := countFn(ctx, id, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to count ledger for reconcile: %w", err)
	}

	if newValue != oldValue {
		if err := s.counters.Set(ctx, table, column, id, newValue); err != nil {
			return nil, fmt.Errorf("failed to overwrite counter: %w", err)
		}
		s.logger.Warn(ctx, "Counter drift reconciled",
			logger.F("table", table),
			logger.F("column", column),
			logger.F("id", id),
			logger.F("old", oldValue),
			logger.F("new", newValue))
	}

	return &model.ReconcileResult{
		TargetID: id,
		Kind:     kind,
		Column:   column,
		OldValue: oldValue,
		NewValue: newValue,
		Drift:    newValue - oldValue,
	}, nil
}

// publishEvent 发布互动事件
// 一次账本写入恰好对应一条事件，取消事件由下游自行忽略
func (s *Service) publishEvent(ctx context.Context, eventType string, record *model.Interaction, ownerID int64) {
	if s.producer == nil {
		return
	}

	event := &model.InteractionEvent{
		EventType:       eventType,
		UserID:          record.UserID,
		ObjectID:        record.ObjectID,
		ObjectType:      record.ObjectType,
		InteractionType: record.InteractionType,
		TargetOwnerID:   ownerID,
		Caption:         record.Caption,
		Timestamp:       time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal interaction event",
			logger.F("error", err.Error()),
			logger.F("event", event))
		return
	}

	if err := s.producer.SendMessage(model.TopicInteractionEvents, []byte(event.EventKey()), eventData); err != nil {
		s.logger.Error(ctx, "Failed to send interaction event",
			logger.F("error", err.Error()),
			logger.F("topic", model.TopicInteractionEvents),
			logger.F("key", event.EventKey()))
	}
}

// clearInteractionCache 清除互动相关缓存
func (s *Service) clearInteractionCache(ctx context.Context, actorID, targetID int64, kind string) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx,
		model.GetUserInteractionKey(actorID, targetID, kind),
		model.GetTargetCountKey(targetID, kind))
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
