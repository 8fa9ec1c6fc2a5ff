package logger

import (
	"context"
	"fmt"
	"os"

	kratoslog "github.com/go-kratos/kratos/v2/log"
)

// KratosLogger Kratos日志适配器，把框架层日志转发到zap实现
type KratosLogger struct {
	logger Logger
}

// NewKratosLogger 创建Kratos日志适配器
func NewKratosLogger(logger Logger) kratoslog.Logger {
	return &KratosLogger{logger: logger}
}

// Log 实现Kratos Logger接口
func (kl *KratosLogger) Log(level kratoslog.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}

	// 解析键值对
	fields := make([]Field, 0, len(keyvals)/2)
	var msg string

	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			key := fmt.Sprintf("%v", keyvals[i])
			if key == "msg" {
				msg = fmt.Sprintf("%v", keyvals[i+1])
			} else {
				fields = append(fields, F(key, keyvals[i+1]))
			}
		}
	}

	ctx := context.TODO()
	switch level {
	case kratoslog.LevelDebug:
		kl.logger.Debug(ctx, msg, fields...)
	case kratoslog.LevelWarn:
		kl.logger.Warn(ctx, msg, fields...)
	case kratoslog.LevelError, kratoslog.LevelFatal:
		kl.logger.Error(ctx, msg, fields...)
	default:
		kl.logger.Info(ctx, msg, fields...)
	}

	return nil
}

// NewKratosStdLogger 创建标准的Kratos日志器
func NewKratosStdLogger(serviceName, version string) kratoslog.Logger {
	return kratoslog.With(
		kratoslog.NewStdLogger(os.Stdout),
		"service.name", serviceName,
		"service.version", version,
		"ts", kratoslog.DefaultTimestamp,
		"caller", kratoslog.DefaultCaller,
	)
}
