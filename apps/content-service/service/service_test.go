package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pixgram-social/apps/content-service/model"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/logger"
)

// newTestService 组装带内存依赖的服务
func newTestService() (*Service, *mockContentDAO, *mockCommentDAO, *mockPublisher) {
	content := NewMockContentDAO()
	comments := NewMockCommentDAO(content)
	producer := NewMockPublisher()
	svc := NewService(content, comments, nil, producer, logger.GetLogger())
	return svc, content, comments, producer
}

// mustCreateImage 测试辅助：建一张图
func mustCreateImage(t *testing.T, svc *Service, authorID int64, public bool) *model.Image {
	t.Helper()
	image, err := svc.CreateImage(context.Background(), authorID, &model.Image{
		StorageKey: "img/key",
		IsPublic:   public,
	})
	if err != nil {
		t.Fatalf("create image failed: %v", err)
	}
	return image
}

// TestOwnershipGuardOrdering 测试存在性报错优先于权限报错
func TestOwnershipGuardOrdering(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	image := mustCreateImage(t, svc, 1, true)

	// 不存在的图片：即使调用者也不是归属者，也报NotFound
	if _, err := svc.UpdateImage(ctx, 2, 99999, "t", "", nil); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing image, got %v", err)
	}

	// 存在但不归属：报Forbidden
	if _, err := svc.UpdateImage(ctx, 2, image.ID, "t", "", nil); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}

	// 归属者可改
	updated, err := svc.UpdateImage(ctx, 1, image.ID, "new title", "", nil)
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("title not updated, got %q", updated.Title)
	}

	// 删除同样受归属保护
	if err := svc.DeleteImage(ctx, 2, image.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden on delete, got %v", err)
	}
	if err := svc.DeleteImage(ctx, 1, image.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if err := svc.DeleteImage(ctx, 1, image.ID); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

// TestPrivateImageVisibility 测试私有图片只有作者可见
func TestPrivateImageVisibility(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	image := mustCreateImage(t, svc, 1, false)

	if _, err := svc.GetImage(ctx, 1, image.ID); err != nil {
		t.Errorf("owner should see private image, got %v", err)
	}
	if _, err := svc.GetImage(ctx, 2, image.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}
}

// TestAlbumOwnershipGuard 测试相册归属保护
func TestAlbumOwnershipGuard(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	album, err := svc.CreateAlbum(ctx, 1, &model.Album{Title: "trip"})
	if err != nil {
		t.Fatalf("create album failed: %v", err)
	}

	if _, err := svc.UpdateAlbum(ctx, 2, album.ID, "hijack", "", 0); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteAlbum(ctx, 2, album.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteAlbum(ctx, 1, album.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
}

// TestTrendingOrderDeterministic 测试热门榜排序的确定性
func TestTrendingOrderDeterministic(t *testing.T) {
	svc, content, _, _ := newTestService()
	ctx := context.Background()

	base := time.Now()

	// 点赞数相同，评论多的在前
	a := &model.Image{AuthorID: 1, StorageKey: "a", IsPublic: true, LikesCount: 10, CommentsCount: 1, CreatedAt: base}
	b := &model.Image{AuthorID: 1, StorageKey: "b", IsPublic: true, LikesCount: 10, CommentsCount: 5, CreatedAt: base}
	// 点赞最多的永远第一
	c := &model.Image{AuthorID: 1, StorageKey: "c", IsPublic: true, LikesCount: 20, CreatedAt: base}
	// 私有图片不上榜
	d := &model.Image{AuthorID: 1, StorageKey: "d", IsPublic: false, LikesCount: 100, CreatedAt: base}

	for _, image := range []*model.Image{a, b, c, d} {
		if err := content.CreateImage(ctx, image); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	result, err := svc.Trending(ctx, 1, 20)
	if err != nil {
		t.Fatalf("trending failed: %v", err)
	}

	if result.Total != 3 {
		t.Errorf("expected 3 public images, got %d", result.Total)
	}
	if len(result.Images) != 3 {
		t.Fatalf("expected 3 images in page, got %d", len(result.Images))
	}
	if result.Images[0].StorageKey != "c" {
		t.Errorf("expected most-liked first, got %s", result.Images[0].StorageKey)
	}
	if result.Images[1].StorageKey != "b" {
		t.Errorf("expected comment tie-break to rank b before a, got %s", result.Images[1].StorageKey)
	}
	if result.Images[2].StorageKey != "a" {
		t.Errorf("expected a last, got %s", result.Images[2].StorageKey)
	}
}

// TestTrendingPageMath 测试总页数向上取整
func TestTrendingPageMath(t *testing.T) {
	svc, content, _, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := content.CreateImage(ctx, &model.Image{AuthorID: 1, StorageKey: "k", IsPublic: true}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	result, err := svc.Trending(ctx, 1, 2)
	if err != nil {
		t.Fatalf("trending failed: %v", err)
	}
	if result.Pages != 3 {
		t.Errorf("expected pages=ceil(5/2)=3, got %d", result.Pages)
	}
	if result.Total != 5 {
		t.Errorf("expected total=5, got %d", result.Total)
	}

	// 越界页：空页，总数与页数不变
	result, err = svc.Trending(ctx, 10, 2)
	if err != nil {
		t.Fatalf("trending failed: %v", err)
	}
	if len(result.Images) != 0 || result.Pages != 3 {
		t.Errorf("expected empty page with pages=3, got len=%d pages=%d", len(result.Images), result.Pages)
	}
}

// TestCommentLifecycle 测试评论增删与计数、事件
func TestCommentLifecycle(t *testing.T) {
	svc, _, _, producer := newTestService()
	ctx := context.Background()

	image := mustCreateImage(t, svc, 7, true)

	comment, err := svc.CreateComment(ctx, 1, image.ID, "nice shot")
	if err != nil {
		t.Fatalf("create comment failed: %v", err)
	}

	// 评论计数随评论创建递增
	got, err := svc.GetImage(ctx, 1, image.ID)
	if err != nil {
		t.Fatalf("get image failed: %v", err)
	}
	if got.CommentsCount != 1 {
		t.Errorf("expected comments_count=1, got %d", got.CommentsCount)
	}

	// 评论事件送达图片作者
	messages := producer.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 comment event, got %d", len(messages))
	}
	var event model.CommentEvent
	if err := json.Unmarshal(messages[0].Value, &event); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}
	if event.InteractionType != model.KindComment || event.TargetOwnerID != 7 {
		t.Errorf("unexpected event: %+v", event)
	}

	// 删除归属保护：NotFound优先，之后Forbidden
	if err := svc.DeleteComment(ctx, 2, 99999); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteComment(ctx, 2, comment.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteComment(ctx, 1, comment.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}

	got, _ = svc.GetImage(ctx, 1, image.ID)
	if got.CommentsCount != 0 {
		t.Errorf("expected comments_count=0 after delete, got %d", got.CommentsCount)
	}
}

// TestCommentOnMissingImage 测试对不存在图片评论
func TestCommentOnMissingImage(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.CreateComment(context.Background(), 1, 99999, "hi"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestTrendingCacheScope 测试热门榜只缓存默认页长且变更即作废
func TestTrendingCacheScope(t *testing.T) {
	content := NewMockContentDAO()
	comments := NewMockCommentDAO(content)
	cache := NewMockCache()
	svc := NewService(content, comments, cache, NewMockPublisher(), logger.GetLogger())
	ctx := context.Background()

	mustCreateImage(t, svc, 1, true)

	// 默认页长命中缓存
	result, err := svc.Trending(ctx, 1, model.DefaultPageSize)
	if err != nil {
		t.Fatalf("trending failed: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected total=1, got %d", result.Total)
	}
	if !cache.Has(model.GetTrendingKey(1, model.DefaultPageSize)) {
		t.Errorf("expected default-size page to be cached")
	}

	// 绕过服务直接入库：缓存没被作废，继续命中旧页
	if err := content.CreateImage(ctx, &model.Image{AuthorID: 1, StorageKey: "raw", IsPublic: true}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	result, _ = svc.Trending(ctx, 1, model.DefaultPageSize)
	if result.Total != 1 {
		t.Errorf("expected cached total=1, got %d", result.Total)
	}

	// 经服务创建会作废缓存，榜单立即反映新内容
	mustCreateImage(t, svc, 1, true)
	result, _ = svc.Trending(ctx, 1, model.DefaultPageSize)
	if result.Total != 3 {
		t.Errorf("expected fresh total=3 after invalidation, got %d", result.Total)
	}

	// 非默认页长不缓存，永远直读
	result, err = svc.Trending(ctx, 1, 2)
	if err != nil {
		t.Fatalf("trending failed: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("expected total=3, got %d", result.Total)
	}
	if cache.Has(model.GetTrendingKey(1, 2)) {
		t.Errorf("non-default page size must not be cached")
	}
	if err := content.CreateImage(ctx, &model.Image{AuthorID: 1, StorageKey: "raw2", IsPublic: true}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	result, _ = svc.Trending(ctx, 1, 2)
	if result.Total != 4 {
		t.Errorf("expected uncached read to see total=4, got %d", result.Total)
	}
}
