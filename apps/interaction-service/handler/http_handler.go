package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"pixgram-social/apps/interaction-service/service"
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
	api := r.Group("/api/v1/interaction")
	{
		api.POST("/toggle", h.Toggle)            // 切换互动状态
		api.POST("/check", h.Check)              // 查询互动状态
		api.POST("/count", h.Count)              // 查询目标计数
		api.POST("/list/actor", h.ListByActor)   // 用户发起的互动列表
		api.POST("/list/target", h.ListByTarget) // 目标收到的互动列表
		api.PUT("/repost/:id/caption", h.UpdateRepostCaption) // 修改转发文案
		api.POST("/reconcile", h.Reconcile)      // 计数器对账（运维）
	}
}

// ToggleRequest 切换互动请求
type ToggleRequest struct {
	TargetID int64  `json:"target_id" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	Caption  string `json:"caption"`
}

// Toggle 切换互动状态
func (h *HTTPHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	active, count, err := h.svc.Toggle(c.Request.Context(), actorID, req.TargetID, req.Kind, req.Caption)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to toggle interaction",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("targetID", req.TargetID),
				logger.F("kind", req.Kind))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{
		"active": active,
		"count":  count,
	})
}

// CheckRequest 查询互动状态请求
type CheckRequest struct {
	TargetID int64  `json:"target_id" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
}

// Check 查询互动状态
func (h *HTTPHandler) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	active, err := h.svc.Check(c.Request.Context(), actorID, req.TargetID, req.Kind)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to check interaction",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("targetID", req.TargetID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{"active": active})
}

// CountRequest 查询目标计数请求
type CountRequest struct {
	TargetID int64  `json:"target_id" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
}

// Count 查询目标计数
func (h *HTTPHandler) Count(c *gin.Context) {
	var req CountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	count, err := h.svc.TargetCount(c.Request.Context(), req.TargetID, req.Kind)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to get target count",
				logger.F("error", err.Error()),
				logger.F("targetID", req.TargetID),
				logger.F("kind", req.Kind))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{"count": count})
}

// ListRequest 互动列表请求
type ListRequest struct {
	TargetID int64  `json:"target_id"`
	Kind     string `json:"kind"`
	Page     int32  `json:"page"`
	PageSize int32  `json:"page_size"`
}

// ListByActor 用户发起的互动列表
func (h *HTTPHandler) ListByActor(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	interactions, total, err := h.svc.ListByActor(c.Request.Context(), actorID, req.Kind, req.Page, req.PageSize)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to list interactions by actor",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{
		"interactions": interactions,
		"total":        total,
		"page":         req.Page,
		"page_size":    req.PageSize,
	})
}

// ListByTarget 目标收到的互动列表
func (h *HTTPHandler) ListByTarget(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	interactions, total, err := h.svc.ListByTarget(c.Request.Context(), req.TargetID, req.Kind, req.Page, req.PageSize)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to list interactions by target",
				logger.F("error", err.Error()),
				logger.F("targetID", req.TargetID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{
		"interactions": interactions,
		"total":        total,
		"page":         req.Page,
		"page_size":    req.PageSize,
	})
}

// UpdateCaptionRequest 修改转发文案请求
type UpdateCaptionRequest struct {
	Caption string `json:"caption"`
}

// UpdateRepostCaption 修改转发文案
func (h *HTTPHandler) UpdateRepostCaption(c *gin.Context) {
	interactionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	var req UpdateCaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	actorID := middleware.ActorID(c)
	if err := h.svc.UpdateRepostCaption(c.Request.Context(), actorID, interactionID, req.Caption); err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to update repost caption",
				logger.F("error", err.Error()),
				logger.F("actorID", actorID),
				logger.F("interactionID", interactionID))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, nil)
}

// ReconcileRequest 计数器对账请求
type ReconcileRequest struct {
	TargetID int64  `json:"target_id" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
}

// Reconcile 计数器对账
func (h *HTTPHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, errs.ErrInvalidParam)
		return
	}

	results, err := h.svc.Reconcile(c.Request.Context(), req.TargetID, req.Kind)
	if err != nil {
		if !errs.IsClientError(err) {
			h.logger.Error(c.Request.Context(), "Failed to reconcile counters",
				logger.F("error", err.Error()),
				logger.F("targetID", req.TargetID),
				logger.F("kind", req.Kind))
		}
		httpx.Fail(c, err)
		return
	}

	httpx.OK(c, gin.H{"results": results})
}
