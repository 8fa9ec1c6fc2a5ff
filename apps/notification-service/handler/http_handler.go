package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"pixgram-social/apps/notification-service/service"
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
	api := r.Group("/api/v1/notification")
	{
		api.POST("/list", h.List)                // 通知列表
		api.POST("/mark_read", h.MarkRead)       // 单条已读
		api.POST("/mark_all_read", h.MarkAllRead) // 全部已读
		api.GET("/unread_count", h.UnreadCount)  // 未读数
		api.DELETE("/:id", h.Delete)             // 删除通知
	}
}

// ListRequest 通知列表请求
type ListRequest struct {
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

// List 通知列表
func (h *HTTPHandler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	notifications, total, err := h.svc.List(c.Request.Context(), actorID, req.Page, req.PageSize)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to list notifications",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{
		"notifications": notifications,
		"total":         total,
		"page":          req.Page,
		"page_size":     req.PageSize,
	})
}

// MarkReadRequest 单条已读请求
type MarkReadRequest struct {
	NotificationID int64 `json:"notification_id" binding:"required"`
}

// MarkRead 单条已读
func (h *HTTPHandler) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	if err := h.svc.MarkRead(c.Request.Context(), actorID, req.NotificationID); err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to mark notification read",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("notificationID", req.NotificationID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, nil)
}

// MarkAllRead 全部已读
func (h *HTTPHandler) MarkAllRead(c *gin.Context) {
	actorID := middleware.ActorID(c)
	marked, err := h.svc.MarkAllRead(c.Request.Context(), actorID)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to mark all notifications read",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{"marked": marked})
}

// UnreadCount 未读数
func (h *HTTPHandler) UnreadCount(c *gin.Context) {
	actorID := middleware.ActorID(c)
	count, err := h.svc.UnreadCount(c.Request.Context(), actorID)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to get unread count",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{"count": count})
}

// Delete 删除通知
func (h *HTTPHandler) Delete(c *gin.Context) {
	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	if err := h.svc.Delete(c.Request.Context(), actorID, notificationID); err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to delete notification",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("notificationID", notificationID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, nil)
}
