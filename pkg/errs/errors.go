package errs

import "errors"

// 业务语义错误，service层返回，handler层映射为HTTP状态码
var (
	// ErrNotFound 目标不存在
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden 无权操作他人资源
	ErrForbidden = errors.New("operation forbidden")

	// ErrInvalidOperation 非法操作，如自己关注自己
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidParam 请求参数不合法
	ErrInvalidParam = errors.New("invalid parameter")

	// ErrDuplicate 唯一约束冲突，插入时记录已存在
	ErrDuplicate = errors.New("record already exists")

	// ErrConflict 并发切换冲突，重试一次后仍失败
	ErrConflict = errors.New("concurrent toggle conflict")

	// ErrCounterUnderflow 计数器递减越过零界
	ErrCounterUnderflow = errors.New("counter underflow")
)

// IsClientError 判断是否为客户端语义错误（非服务端故障）
func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidOperation) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidParam)
}
