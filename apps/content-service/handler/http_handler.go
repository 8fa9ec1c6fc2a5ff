package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"pixgram-social/apps/content-service/model"
	"pixgram-social/apps/content-service/service"
	"pixgram-social/pkg/errs"
	"pixgram-social/pkg/httpx"
	"pixgram-social/pkg/logger"
	"pixgram-social/pkg/middleware"
)

// HTTPHandler HTTP处理器
type HTTPHandler struct {
	svc    *service.Service
	logger logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, log logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: log,
	}
}

// RegisterRoutes 注册HTTP路由
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1/content")
	{
		// 图片
		api.POST("/images", h.CreateImage)
		api.GET("/images/:id", h.GetImage)
		api.PUT("/images/:id", h.UpdateImage)
		api.DELETE("/images/:id", h.DeleteImage)
		api.POST("/images/list", h.ListImagesByAuthor)

		// 相册
		api.POST("/albums", h.CreateAlbum)
		api.GET("/albums/:id", h.GetAlbum)
		api.PUT("/albums/:id", h.UpdateAlbum)
		api.DELETE("/albums/:id", h.DeleteAlbum)

		// 评论
		api.POST("/comments", h.CreateComment)
		api.DELETE("/comments/:id", h.DeleteComment)
		api.POST("/comments/list", h.ListComments)

		// 热门榜（公开读，无需认证）
		api.GET("/trending", h.Trending)
	}
}

// pathID 解析路径中的ID参数
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Fail(c, errs.ErrInvalidParam)
		return 0, false
	}
	return id, true
}

// CreateImageRequest 创建图片请求
type CreateImageRequest struct {
	AlbumID     int64  `json:"album_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StorageKey  string `json:"storage_key" binding:"required"`
	IsPublic    *bool  `json:"is_public"`
}

// CreateImage 创建图片
func (h *HTTPHandler) CreateImage(c *gin.Context) {
	var req CreateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	image := &model.Image{
		AlbumID:     req.AlbumID,
		Title:       req.Title,
		Description: req.Description,
		StorageKey:  req.StorageKey,
		IsPublic:    true,
	}
	if req.IsPublic != nil {
		image.IsPublic = *req.IsPublic
	}

	actorID := middleware.ActorID(c)
	image, err := h.svc.CreateImage(c.Request.Context(), actorID, image)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to create image",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, image)
}

// GetImage 获取图片
func (h *HTTPHandler) GetImage(c *gin.Context) {
	imageID, ok := pathID(c)
	if !ok {
		return
	}

	image, err := h.svc.GetImage(c.Request.Context(), middleware.ActorID(c), imageID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, image)
}

// UpdateImageRequest 更新图片请求
type UpdateImageRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
}

// UpdateImage 更新图片
func (h *HTTPHandler) UpdateImage(c *gin.Context) {
	imageID, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	image, err := h.svc.UpdateImage(c.Request.Context(), actorID, imageID, req.Title, req.Description, req.IsPublic)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to update image",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("imageID", imageID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, image)
}

// DeleteImage 删除图片
func (h *HTTPHandler) DeleteImage(c *gin.Context) {
	imageID, ok := pathID(c)
	if !ok {
		return
	}

	actorID := middleware.ActorID(c)
	if err := h.svc.DeleteImage(c.Request.Context(), actorID, imageID); err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to delete image",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("imageID", imageID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, nil)
}

// ListImagesRequest 作者图片列表请求
type ListImagesRequest struct {
	AuthorID int64 `json:"author_id" binding:"required"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

// ListImagesByAuthor 作者图片列表
func (h *HTTPHandler) ListImagesByAuthor(c *gin.Context) {
	var req ListImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	images, total, err := h.svc.ListImagesByAuthor(c.Request.Context(), req.AuthorID, req.Page, req.PageSize)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{
		"images":    images,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

// CreateAlbumRequest 创建相册请求
type CreateAlbumRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// CreateAlbum 创建相册
func (h *HTTPHandler) CreateAlbum(c *gin.Context) {
	var req CreateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	album, err := h.svc.CreateAlbum(c.Request.Context(), actorID, &model.Album{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to create album",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, album)
}

// GetAlbum 获取相册
func (h *HTTPHandler) GetAlbum(c *gin.Context) {
	albumID, ok := pathID(c)
	if !ok {
		return
	}

	album, err := h.svc.GetAlbum(c.Request.Context(), albumID)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, album)
}

// UpdateAlbumRequest 更新相册请求
type UpdateAlbumRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CoverImageID int64  `json:"cover_image_id"`
}

// UpdateAlbum 更新相册
func (h *HTTPHandler) UpdateAlbum(c *gin.Context) {
	albumID, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	album, err := h.svc.UpdateAlbum(c.Request.Context(), actorID, albumID, req.Title, req.Description, req.CoverImageID)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to update album",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("albumID", albumID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, album)
}

// DeleteAlbum 删除相册
func (h *HTTPHandler) DeleteAlbum(c *gin.Context) {
	albumID, ok := pathID(c)
	if !ok {
		return
	}

	actorID := middleware.ActorID(c)
	if err := h.svc.DeleteAlbum(c.Request.Context(), actorID, albumID); err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to delete album",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("albumID", albumID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, nil)
}

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	ImageID int64  `json:"image_id" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

// CreateComment 发表评论
func (h *HTTPHandler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	comment, err := h.svc.CreateComment(c.Request.Context(), actorID, req.ImageID, req.Text)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to create comment",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("imageID", req.ImageID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, comment)
}

// DeleteComment 删除评论
func (h *HTTPHandler) DeleteComment(c *gin.Context) {
	commentID, ok := pathID(c)
	if !ok {
		return
	}

	actorID := middleware.ActorID(c)
	if err := h.svc.DeleteComment(c.Request.Context(), actorID, commentID); err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to delete comment",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("commentID", commentID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, nil)
}

// ListCommentsRequest 评论列表请求
type ListCommentsRequest struct {
	ImageID  int64 `json:"image_id" binding:"required"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

// ListComments 评论列表
func (h *HTTPHandler) ListComments(c *gin.Context) {
	var req ListCommentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	comments, total, err := h.svc.ListComments(c.Request.Context(), req.ImageID, req.Page, req.PageSize)
	if err != nil {
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{
		"comments":  comments,
		"total":     total,
		"page":      req.Page,
		"page_size": req.PageSize,
	})
}

// Trending 热门榜
func (h *HTTPHandler) Trending(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 32)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 32)

	result, err := h.svc.Trending(c.Request.Context(), int32(page), int32(pageSize))
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to rank trending",
				logger.F("error", err.Error()))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, result)
}
