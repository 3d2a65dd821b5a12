// Package xlog zap日志门面
// 未调用SetupLogger时按默认配置输出到标准输出
package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	rootLogger *zLogger
)

func root() *zLogger {
	if rootLogger == nil {
		initDefaultLogger()
	}
	return rootLogger
}

// Debug 输出"Debug"级别日志信息
func Debug(args ...any) {
	root().Debug(args...)
}

// Debugf 输出格式化的"Debug"级别日志信息
func Debugf(format string, args ...any) {
	root().Debugf(format, args...)
}

// Debugw 输出键值对形式的"Debug"级别日志信息
func Debugw(msg string, keysAndValues ...any) {
	root().Debugw(msg, keysAndValues...)
}

// Debugx 以zapfield方式，极速输出"Debug"级别日志信息
func Debugx(msg string, fields ...zapcore.Field) {
	root().Debugx(msg, fields...)
}

// Info 输出"Info"级别日志信息
func Info(args ...any) {
	root().Info(args...)
}

// Infof 输出格式化的"Info"级别日志信息
func Infof(format string, args ...any) {
	root().Infof(format, args...)
}

// Infow 输出键值对形式的"Info"级别日志信息
func Infow(msg string, keysAndValues ...any) {
	root().Infow(msg, keysAndValues...)
}

// Infox 以zapfield方式，极速输出"Info"级别日志信息
func Infox(msg string, fields ...zapcore.Field) {
	root().Infox(msg, fields...)
}

// Warn 输出"Warn"级别日志信息
func Warn(args ...any) {
	root().Warn(args...)
}

// Warnf 输出格式化的"Warn"级别日志信息
func Warnf(format string, args ...any) {
	root().Warnf(format, args...)
}

// Warnw 输出键值对形式的"Warn"级别日志信息
func Warnw(msg string, keysAndValues ...any) {
	root().Warnw(msg, keysAndValues...)
}

// Warnx 以zapfield方式，极速输出"Warn"级别日志信息
func Warnx(msg string, fields ...zapcore.Field) {
	root().Warnx(msg, fields...)
}

// Error 输出"Error"级别日志信息
func Error(args ...any) {
	root().Error(args...)
}

// Errorf 输出格式化的"Error"级别日志信息
func Errorf(format string, args ...any) {
	root().Errorf(format, args...)
}

// Errorw 输出键值对形式的"Error"级别日志信息
func Errorw(msg string, keysAndValues ...any) {
	root().Errorw(msg, keysAndValues...)
}

// Errorx 以zapfield方式，极速输出"Error"级别日志信息
func Errorx(msg string, fields ...zapcore.Field) {
	root().Errorx(msg, fields...)
}

// WithFields 获取携带固定字段的子Logger
func WithFields(fields ...zap.Field) ILogger {
	return root().WithFields(fields...)
}

// Enabled 某级别日志当前是否会被输出
func Enabled(level zapcore.Level) bool {
	return root().Enabled(level)
}
