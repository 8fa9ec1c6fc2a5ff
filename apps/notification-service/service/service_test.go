package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pixgram-social/apps/notification-service/model"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/logger"
)

// newTestService 组装带内存依赖的服务
func newTestService() (*Service, *mockInbox) {
	inbox := NewMockInbox()
	svc := NewService(inbox, nil, NewMockIDGen(), logger.GetLogger())
	return svc, inbox
}

func likeEvent(senderID, imageID, ownerID int64) *model.InteractionEvent {
	return &model.InteractionEvent{
		EventType:       model.EventTypeCreate,
		UserID:          senderID,
		ObjectID:        imageID,
		ObjectType:      model.ObjectTypeImage,
		InteractionType: model.NotifyTypeLike,
		TargetOwnerID:   ownerID,
		Timestamp:       time.Now(),
	}
}

// TestEventCreatesNotification 测试互动事件落为通知
func TestEventCreatesNotification(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.HandleInteractionEvent(ctx, likeEvent(1, 100, 7)); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}

	notifications, total, err := svc.List(ctx, 7, 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got total=%d len=%d", total, len(notifications))
	}

	n := notifications[0]
	if n.SenderID != 1 || n.RecipientID != 7 {
		t.Errorf("unexpected sender/recipient: %d -> %d", n.SenderID, n.RecipientID)
	}
	if n.Type != model.NotifyTypeLike {
		t.Errorf("expected type like, got %s", n.Type)
	}
	if n.Content != "liked your image" {
		t.Errorf("unexpected content: %s", n.Content)
	}
	if n.RelatedImageID != 100 {
		t.Errorf("expected related image 100, got %d", n.RelatedImageID)
	}
	if n.IsRead {
		t.Errorf("new notification should be unread")
	}
}

// TestSelfInteractionSuppressed 测试自己对自己的互动不产生通知
func TestSelfInteractionSuppressed(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.HandleInteractionEvent(ctx, likeEvent(7, 100, 7)); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}

	count, err := svc.UnreadCount(ctx, 7)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no notification for self interaction, got %d", count)
	}
}

// TestDeleteEventIgnored 测试取消事件不产生通知
func TestDeleteEventIgnored(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	event := likeEvent(1, 100, 7)
	event.EventType = model.EventTypeDelete
	if err := svc.HandleInteractionEvent(ctx, event); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}

	count, err := svc.UnreadCount(ctx, 7)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected delete event to be ignored, got %d notifications", count)
	}
}

// TestUnknownInteractionTypeIgnored 测试未知互动类型静默跳过
func TestUnknownInteractionTypeIgnored(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	event := likeEvent(1, 100, 7)
	event.InteractionType = "poke"
	if err := svc.HandleInteractionEvent(ctx, event); err != nil {
		t.Fatalf("expected unknown type to be skipped without error, got %v", err)
	}

	count, _ := svc.UnreadCount(ctx, 7)
	if count != 0 {
		t.Errorf("expected no notification for unknown type, got %d", count)
	}
}

// TestFollowNotificationHasNoImage 测试关注通知不带关联图片
func TestFollowNotificationHasNoImage(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	event := &model.InteractionEvent{
		EventType:       model.EventTypeCreate,
		UserID:          1,
		ObjectID:        7,
		ObjectType:      model.ObjectTypeUser,
		InteractionType: model.NotifyTypeFollow,
		TargetOwnerID:   7,
		Timestamp:       time.Now(),
	}
	if err := svc.HandleInteractionEvent(ctx, event); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}

	notifications, _, err := svc.List(ctx, 7, 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].RelatedImageID != 0 {
		t.Errorf("follow notification should not carry related image, got %d", notifications[0].RelatedImageID)
	}
	if notifications[0].Content != "started following you" {
		t.Errorf("unexpected content: %s", notifications[0].Content)
	}
}

// TestMarkReadGuardOrdering 测试已读操作的存在性优先于归属
func TestMarkReadGuardOrdering(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.HandleInteractionEvent(ctx, likeEvent(1, 100, 7)); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}
	notifications, _, _ := svc.List(ctx, 7, 1, 20)
	notificationID := notifications[0].ID

	// 不存在的通知：NotFound优先
	if err := svc.MarkRead(ctx, 99, 424242); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing notification, got %v", err)
	}

	// 别人的通知：Forbidden
	if err := svc.MarkRead(ctx, 99, notificationID); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden for foreign notification, got %v", err)
	}

	// 收件人本人：成功且未读数归零
	if err := svc.MarkRead(ctx, 7, notificationID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	count, _ := svc.UnreadCount(ctx, 7)
	if count != 0 {
		t.Errorf("expected unread count 0 after mark read, got %d", count)
	}
}

// TestMarkAllRead 测试全部已读
func TestMarkAllRead(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if err := svc.HandleInteractionEvent(ctx, likeEvent(i, 100+i, 7)); err != nil {
			t.Fatalf("handle event failed: %v", err)
		}
	}

	marked, err := svc.MarkAllRead(ctx, 7)
	if err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	if marked != 3 {
		t.Errorf("expected 3 marked, got %d", marked)
	}

	count, _ := svc.UnreadCount(ctx, 7)
	if count != 0 {
		t.Errorf("expected unread count 0, got %d", count)
	}

	// 再次全读是空操作
	marked, err = svc.MarkAllRead(ctx, 7)
	if err != nil {
		t.Fatalf("second mark all read failed: %v", err)
	}
	if marked != 0 {
		t.Errorf("expected 0 marked on second pass, got %d", marked)
	}
}

// TestDeleteNotificationGuard 测试删除通知的归属守卫
func TestDeleteNotificationGuard(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.HandleInteractionEvent(ctx, likeEvent(1, 100, 7)); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}
	notifications, _, _ := svc.List(ctx, 7, 1, 20)
	notificationID := notifications[0].ID

	if err := svc.Delete(ctx, 99, notificationID); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	if err := svc.Delete(ctx, 7, notificationID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, _, err := svc.List(ctx, 7, 1, 20); err != nil {
		t.Fatalf("list after delete failed: %v", err)
	}
	count, _ := svc.UnreadCount(ctx, 7)
	if count != 0 {
		t.Errorf("expected empty inbox after delete, got %d unread", count)
	}
}

// TestUnreadCountCached 测试未读数缓存与写时作废
func TestUnreadCountCached(t *testing.T) {
	inbox := NewMockInbox()
	cache := NewMockCache()
	svc := NewService(inbox, cache, NewMockIDGen(), logger.GetLogger())
	ctx := context.Background()

	if err := svc.HandleInteractionEvent(ctx, likeEvent(1, 100, 7)); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}

	count, err := svc.UnreadCount(ctx, 7)
	if err != nil || count != 1 {
		t.Fatalf("expected unread=1, got count=%d err=%v", count, err)
	}

	// 绕过服务直接入库：缓存继续命中旧值
	inbox.Insert(ctx, &model.Notification{
		ID:          999,
		RecipientID: 7,
		SenderID:    2,
		Type:        model.NotifyTypeLike,
		Content:     "liked your image",
	})
	count, err = svc.UnreadCount(ctx, 7)
	if err != nil || count != 1 {
		t.Errorf("expected cached unread=1, got count=%d err=%v", count, err)
	}

	// 新事件落库会作废缓存，下次读取回填真实值
	if err := svc.HandleInteractionEvent(ctx, likeEvent(3, 101, 7)); err != nil {
		t.Fatalf("handle event failed: %v", err)
	}
	count, err = svc.UnreadCount(ctx, 7)
	if err != nil || count != 3 {
		t.Errorf("expected unread=3 after invalidation, got count=%d err=%v", count, err)
	}

	// 全读后归零
	if _, err := svc.MarkAllRead(ctx, 7); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, 7)
	if count != 0 {
		t.Errorf("expected unread=0 after mark all read, got %d", count)
	}
}

// TestListPagination 测试通知分页
func TestListPagination(t *testing.T) {
	svc, inbox := newTestService()
	ctx := context.Background()

	base := time.Now()
	for i := int64(1); i <= 5; i++ {
		inbox.Insert(ctx, &model.Notification{
			ID:          i,
			RecipientID: 7,
			SenderID:    i,
			Type:        model.NotifyTypeLike,
			Content:     "liked your image",
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		})
	}

	notifications, total, err := svc.List(ctx, 7, 1, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected page of 2, got %d", len(notifications))
	}
	// 最新的在前
	if notifications[0].ID != 5 || notifications[1].ID != 4 {
		t.Errorf("expected ids [5 4], got [%d %d]", notifications[0].ID, notifications[1].ID)
	}

	// 越界页返回空列表，total不变
	notifications, total, err = svc.List(ctx, 7, 9, 2)
	if err != nil {
		t.Fatalf("out of range list failed: %v", err)
	}
	if total != 5 || len(notifications) != 0 {
		t.Errorf("expected empty page with total 5, got total=%d len=%d", total, len(notifications))
	}
}
