package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"pixgram-social/apps/interaction-service/model"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/logger"
)

// newTestService 组装带内存依赖的服务
func newTestService() (*Service, *mockLedger, *mockCounters, *mockContent, *mockPublisher) {
	ledger := NewMockLedger()
	counters := NewMockCounters()
	content := NewMockContent()
	producer := NewMockPublisher()
	svc := NewService(ledger, counters, content, nil, producer, logger.GetLogger())
	return svc, ledger, counters, content, producer
}

// TestToggleRoundTrip 测试切换往返：开-关-开
func TestToggleRoundTrip(t *testing.T) {
	svc, _, counters, content, _ := newTestService()
	ctx := context.Background()

	content.AddTarget(model.ObjectTypeImage, 100, 7)

	// 第一次切换：点赞生效
	active, count, err := svc.Toggle(ctx, 1, 100, model.KindLike, "")
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if !active {
		t.Errorf("expected active=true after first toggle")
	}
	if count != 1 {
		t.Errorf("expected count=1, got %d", count)
	}

	// 第二次切换：取消点赞
	active, count, err = svc.Toggle(ctx, 1, 100, model.KindLike, "")
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if active {
		t.Errorf("expected active=false after second toggle")
	}
	if count != 0 {
		t.Errorf("expected count=0, got %d", count)
	}

	// 第三次切换：再次点赞
	active, count, err = svc.Toggle(ctx, 1, 100, model.KindLike, "")
	if err != nil {
		t.Fatalf("third toggle failed: %v", err)
	}
	if !active || count != 1 {
		t.Errorf("expected active=true count=1, got active=%v count=%d", active, count)
	}

	// 冗余计数与账本一致
	v, _ := counters.Get(ctx, "images", "likes_count", 100)
	if v != 1 {
		t.Errorf("expected likes_count=1, got %d", v)
	}
}

// TestToggleTargetNotFound 测试目标不存在
func TestToggleTargetNotFound(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, _, err := svc.Toggle(context.Background(), 1, 999, model.KindLike, "")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestSelfFollowRejected 测试自己关注自己被拒绝
func TestSelfFollowRejected(t *testing.T) {
	svc, _, _, content, _ := newTestService()
	content.AddTarget(model.ObjectTypeUser, 5, 5)

	_, _, err := svc.Toggle(context.Background(), 5, 5, model.KindFollow, "")
	if !errors.Is(err, errs.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}

	// 自己点赞自己的图片是允许的
	content.AddTarget(model.ObjectTypeImage, 10, 5)
	active, _, err := svc.Toggle(context.Background(), 5, 10, model.KindLike, "")
	if err != nil || !active {
		t.Errorf("self-like should be allowed, got active=%v err=%v", active, err)
	}
}

// TestFollowAdjustsBothSides 测试关注双边计数
func TestFollowAdjustsBothSides(t *testing.T) {
	svc, _, counters, content, _ := newTestService()
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeUser, 2, 2)

	if _, _, err := svc.Toggle(ctx, 1, 2, model.KindFollow, ""); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	followers, _ := counters.Get(ctx, "users", "followers_count", 2)
	following, _ := counters.Get(ctx, "users", "following_count", 1)
	if followers != 1 {
		t.Errorf("expected followers_count=1, got %d", followers)
	}
	if following != 1 {
		t.Errorf("expected following_count=1, got %d", following)
	}

	// 取关后双边归零
	if _, _, err := svc.Toggle(ctx, 1, 2, model.KindFollow, ""); err != nil {
		t.Fatalf("unfollow failed: %v", err)
	}
	followers, _ = counters.Get(ctx, "users", "followers_count", 2)
	following, _ = counters.Get(ctx, "users", "following_count", 1)
	if followers != 0 || following != 0 {
		t.Errorf("expected both sides 0, got followers=%d following=%d", followers, following)
	}
}

// TestToggleEmitsExactlyOneCreateEvent 测试一次生效切换恰好发一条create事件
func TestToggleEmitsExactlyOneCreateEvent(t *testing.T) {
	svc, _, _, content, producer := newTestService()
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeImage, 100, 7)

	if _, _, err := svc.Toggle(ctx, 1, 100, model.KindLike, ""); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	messages := producer.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 event, got %d", len(messages))
	}

	var event model.InteractionEvent
	if err := json.Unmarshal(messages[0].Value, &event); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if event.EventType != model.EventTypeCreate {
		t.Errorf("expected create event, got %s", event.EventType)
	}
	if event.TargetOwnerID != 7 {
		t.Errorf("expected target owner 7, got %d", event.TargetOwnerID)
	}
	if messages[0].Topic != model.TopicInteractionEvents {
		t.Errorf("unexpected topic %s", messages[0].Topic)
	}

	// 取消再发一条delete事件
	if _, _, err := svc.Toggle(ctx, 1, 100, model.KindLike, ""); err != nil {
		t.Fatalf("toggle off failed: %v", err)
	}
	messages = producer.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 events, got %d", len(messages))
	}
	if err := json.Unmarshal(messages[1].Value, &event); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if event.EventType != model.EventTypeDelete {
		t.Errorf("expected delete event, got %s", event.EventType)
	}
}

// TestConcurrentToggleConsistency 测试并发切换后账本与计数一致
func TestConcurrentToggleConsistency(t *testing.T) {
	svc, ledger, counters, content, _ := newTestService()
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeImage, 100, 7)

	const goroutines = 20
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// 并发冲突允许以ErrConflict失败，但不允许破坏一致性
			svc.Toggle(ctx, 1, 100, model.KindLike, "")
		}()
	}
	wg.Wait()

	// 账本里同一元组至多一条
	ledgerCount, _ := ledger.CountByTarget(ctx, 100, model.KindLike)
	if ledgerCount != 0 && ledgerCount != 1 {
		t.Errorf("ledger must hold 0 or 1 record, got %d", ledgerCount)
	}

	// 并发下计数允许漂移，但对账后必须与账本一致
	if _, err := svc.Reconcile(ctx, 100, model.KindLike); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	counterValue, _ := counters.Get(ctx, "images", "likes_count", 100)
	if counterValue != ledgerCount {
		t.Errorf("counter drifted after reconcile: ledger=%d counter=%d", ledgerCount, counterValue)
	}
}

// TestUpdateRepostCaption 测试转发文案修改与归属校验
func TestUpdateRepostCaption(t *testing.T) {
	svc, ledger, _, content, _ := newTestService()
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeImage, 100, 7)

	if _, _, err := svc.Toggle(ctx, 1, 100, model.KindRepost, "first take"); err != nil {
		t.Fatalf("repost failed: %v", err)
	}
	record, err := ledger.Get(ctx, 1, 100, model.KindRepost)
	if err != nil {
		t.Fatalf("repost record missing: %v", err)
	}
	if record.Caption != "first take" {
		t.Errorf("expected caption to be stored, got %q", record.Caption)
	}

	// 不存在的记录优先报NotFound，即使调用者也不是归属者
	if err := svc.UpdateRepostCaption(ctx, 2, 99999, "x"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// 非归属者报Forbidden
	if err := svc.UpdateRepostCaption(ctx, 2, record.ID, "hijack"); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	// 归属者修改成功
	if err := svc.UpdateRepostCaption(ctx, 1, record.ID, "second take"); err != nil {
		t.Fatalf("caption update failed: %v", err)
	}
	record, _ = ledger.GetByID(ctx, record.ID)
	if record.Caption != "second take" {
		t.Errorf("caption not updated, got %q", record.Caption)
	}

	// 非转发记录不能改文案
	if _, _, err := svc.Toggle(ctx, 1, 100, model.KindLike, ""); err != nil {
		t.Fatalf("like failed: %v", err)
	}
	likeRecord, _ := ledger.Get(ctx, 1, 100, model.KindLike)
	if err := svc.UpdateRepostCaption(ctx, 1, likeRecord.ID, "x"); !errors.Is(err, errs.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}
}

// TestReconcileFixesDrift 测试对账修复漂移
func TestReconcileFixesDrift(t *testing.T) {
	svc, _, counters, content, _ := newTestService()
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeImage, 100, 7)

	for actorID := int64(1); actorID <= 3; actorID++ {
		if _, _, err := svc.Toggle(ctx, actorID, 100, model.KindLike, ""); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
	}

	// 人为制造漂移
	counters.Set(ctx, "images", "likes_count", 100, 10)

	results, err := svc.Reconcile(ctx, 100, model.KindLike)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].OldValue != 10 || results[0].NewValue != 3 || results[0].Drift != -7 {
		t.Errorf("unexpected reconcile result: %+v", results[0])
	}

	v, _ := counters.Get(ctx, "images", "likes_count", 100)
	if v != 3 {
		t.Errorf("counter not overwritten, got %d", v)
	}
}

// TestReconcileFollowBothSides 测试关注对账覆盖双边
func TestReconcileFollowBothSides(t *testing.T) {
	svc, _, counters, content, _ := newTestService()
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeUser, 2, 2)
	content.AddTarget(model.ObjectTypeUser, 3, 3)

	// 用户2被用户1关注，同时用户2关注用户3
	if _, _, err := svc.Toggle(ctx, 1, 2, model.KindFollow, ""); err != nil {
		t.Fatalf("follow failed: %v", err)
	}
	if _, _, err := svc.Toggle(ctx, 2, 3, model.KindFollow, ""); err != nil {
		t.Fatalf("follow failed: %v", err)
	}

	counters.Set(ctx, "users", "followers_count", 2, 99)
	counters.Set(ctx, "users", "following_count", 2, 99)

	results, err := svc.Reconcile(ctx, 2, model.KindFollow)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for follow, got %d", len(results))
	}

	followers, _ := counters.Get(ctx, "users", "followers_count", 2)
	following, _ := counters.Get(ctx, "users", "following_count", 2)
	if followers != 1 {
		t.Errorf("expected followers_count=1, got %d", followers)
	}
	if following != 1 {
		t.Errorf("expected following_count=1, got %d", following)
	}
}

// TestCheckAndList 测试状态查询与分页列表
func TestCheckAndList(t *testing.T) {
	svc, _, _, content, _ := newTestService()
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		content.AddTarget(model.ObjectTypeImage, 100+i, 7)
		if _, _, err := svc.Toggle(ctx, 1, 100+i, model.KindFavorite, ""); err != nil {
			t.Fatalf("toggle failed: %v", err)
		}
	}

	active, err := svc.Check(ctx, 1, 101, model.KindFavorite)
	if err != nil || !active {
		t.Errorf("expected active favorite, got active=%v err=%v", active, err)
	}
	active, err = svc.Check(ctx, 2, 101, model.KindFavorite)
	if err != nil || active {
		t.Errorf("expected inactive for other actor, got active=%v err=%v", active, err)
	}

	interactions, total, err := svc.ListByActor(ctx, 1, model.KindFavorite, 1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total=5, got %d", total)
	}
	if len(interactions) != 2 {
		t.Errorf("expected page of 2, got %d", len(interactions))
	}

	// 越界页返回空页但总数不变
	interactions, total, err = svc.ListByActor(ctx, 1, model.KindFavorite, 10, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 || len(interactions) != 0 {
		t.Errorf("expected empty page with total=5, got total=%d len=%d", total, len(interactions))
	}
}

// TestUnknownKindRejected 测试未知互动类型
func TestUnknownKindRejected(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	if _, _, err := svc.Toggle(context.Background(), 1, 100, "wave", ""); !errors.Is(err, errs.ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam, got %v", err)
	}
	if _, err := svc.Check(context.Background(), 1, 100, "wave"); !errors.Is(err, errs.ErrInvalidParam) {
		t.Errorf("expected ErrInvalidParam, got %v", err)
	}
}

// TestCounterAdjustUnderflow 测试计数递减越过零界被拒绝而不是钳为零
func TestCounterAdjustUnderflow(t *testing.T) {
	counters := NewMockCounters()
	ctx := context.Background()

	if err := counters.Adjust(ctx, "images", "likes_count", 100, -1); !errors.Is(err, errs.ErrCounterUnderflow) {
		t.Errorf("expected ErrCounterUnderflow, got %v", err)
	}

	// 被拒绝的递减不留痕迹
	v, _ := counters.Get(ctx, "images", "likes_count", 100)
	if v != 0 {
		t.Errorf("rejected adjust must not change counter, got %d", v)
	}

	// 回到非负区间后递减恢复正常
	if err := counters.Adjust(ctx, "images", "likes_count", 100, 2); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := counters.Adjust(ctx, "images", "likes_count", 100, -2); err != nil {
		t.Fatalf("decrement to zero failed: %v", err)
	}
	if err := counters.Adjust(ctx, "images", "likes_count", 100, -1); !errors.Is(err, errs.ErrCounterUnderflow) {
		t.Errorf("expected ErrCounterUnderflow at floor, got %v", err)
	}
}

// TestToggleOffSurvivesCounterUnderflow 测试计数漂移到零时取消互动仍按账本成功
func TestToggleOffSurvivesCounterUnderflow(t *testing.T) {
	svc, ledger, counters, content, _ := newTestService()
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeImage, 100, 7)

	if _, _, err := svc.Toggle(ctx, 1, 100, model.KindLike, ""); err != nil {
		t.Fatalf("toggle on failed: %v", err)
	}

	// 人为把计数压到零，取消时的递减会越界
	counters.Set(ctx, "images", "likes_count", 100, 0)

	active, count, err := svc.Toggle(ctx, 1, 100, model.KindLike, "")
	if err != nil {
		t.Fatalf("toggle off must not surface counter underflow: %v", err)
	}
	if active {
		t.Errorf("expected active=false after toggle off")
	}
	if count != 0 {
		t.Errorf("expected count=0, got %d", count)
	}

	// 计数不被钳为负，账本已按权威取消
	v, _ := counters.Get(ctx, "images", "likes_count", 100)
	if v != 0 {
		t.Errorf("counter must stay non-negative, got %d", v)
	}
	exists, _ := ledger.Exists(ctx, 1, 100, model.KindLike)
	if exists {
		t.Errorf("ledger record must be removed")
	}
}

// TestTargetCountCached 测试计数查询的缓存回填与作废
func TestTargetCountCached(t *testing.T) {
	ledger := NewMockLedger()
	counters := NewMockCounters()
	content := NewMockContent()
	cache := NewMockCache()
	svc := NewService(ledger, counters, content, cache, NewMockPublisher(), logger.GetLogger())
	ctx := context.Background()
	content.AddTarget(model.ObjectTypeImage, 100, 7)

	if _, _, err := svc.Toggle(ctx, 1, 100, model.KindLike, ""); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	count, err := svc.TargetCount(ctx, 100, model.KindLike)
	if err != nil || count != 1 {
		t.Fatalf("expected count=1, got count=%d err=%v", count, err)
	}
	if cached, ok := cache.Value(model.GetTargetCountKey(100, model.KindLike)); !ok || cached != "1" {
		t.Errorf("expected count cached as 1, got %q (present=%v)", cached, ok)
	}

	// 直接改库模拟漂移，读仍走缓存
	counters.Set(ctx, "images", "likes_count", 100, 99)
	count, err = svc.TargetCount(ctx, 100, model.KindLike)
	if err != nil || count != 1 {
		t.Errorf("expected cached count=1, got count=%d err=%v", count, err)
	}

	// 对账作废缓存并修正计数，下一次读取回填新值
	if _, err := svc.Reconcile(ctx, 100, model.KindLike); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	count, err = svc.TargetCount(ctx, 100, model.KindLike)
	if err != nil || count != 1 {
		t.Errorf("expected reconciled count=1, got count=%d err=%v", count, err)
	}
	v, _ := counters.Get(ctx, "images", "likes_count", 100)
	if v != 1 {
		t.Errorf("expected counter overwritten to 1, got %d", v)
	}

	// 切换同样作废计数缓存
	if _, _, err := svc.Toggle(ctx, 1, 100, model.KindLike, ""); err != nil {
		t.Fatalf("toggle off failed: %v", err)
	}
	count, err = svc.TargetCount(ctx, 100, model.KindLike)
	if err != nil || count != 0 {
		t.Errorf("expected count=0 after toggle off, got count=%d err=%v", count, err)
	}
}
