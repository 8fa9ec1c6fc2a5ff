package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixgram-social/pkg/errs"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OK 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Fail 失败响应，按业务错误映射HTTP状态码
func Fail(c *gin.Context, err error) {
	status := StatusOf(err)
	c.JSON(status, Response{
		Code:    status,
		Message: err.Error(),
	})
}

// StatusOf 业务错误到HTTP状态码的映射
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidOperation), errors.Is(err, errs.ErrInvalidParam):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteObject 按结果写响应
func WriteObject(c *gin.Context, obj interface{}, err error) {
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, obj)
}
