package errs

import (
	"fmt"
	"testing"
)

// TestIsClientError 测试客户端错误与服务端故障的划分
func TestIsClientError(t *testing.T) {
	clientErrs := []error{
		ErrNotFound,
		ErrForbidden,
		ErrInvalidOperation,
		ErrInvalidParam,
		ErrConflict,
	}
	for _, err := range clientErrs {
		if !IsClientError(err) {
			t.Errorf("expected client error: %v", err)
		}
		// 包装后语义不变
		if !IsClientError(fmt.Errorf("context: %w", err)) {
			t.Errorf("expected wrapped client error: %v", err)
		}
	}

	serverErrs := []error{
		ErrCounterUnderflow,
		fmt.Errorf("connection refused"),
	}
	for _, err := range serverErrs {
		if IsClientError(err) {
			t.Errorf("expected server-side error: %v", err)
		}
	}
}
