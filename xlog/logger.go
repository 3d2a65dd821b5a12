package xlog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ ILogger = &zLogger{}

// ILogger 日志接口 每档级别提供 直出/格式化/键值/字段 四种形态
type ILogger interface {
	Debug(...any)
	Debugf(string, ...any)
	Debugw(string, ...any)
	Debugx(string, ...zapcore.Field)

	Info(...any)
	Infof(string, ...any)
	Infow(string, ...any)
	Infox(string, ...zapcore.Field)

	Warn(...any)
	Warnf(string, ...any)
	Warnw(string, ...any)
	Warnx(string, ...zapcore.Field)

	Error(...any)
	Errorf(string, ...any)
	Errorw(string, ...any)
	Errorx(string, ...zapcore.Field)

	Enabled(level zapcore.Level) bool
	WithFields(fields ...zap.Field) ILogger
}

type zLogger struct {
	logger  *zap.Logger
	slogger *zap.SugaredLogger
}

func newzLogger(logger *zap.Logger) *zLogger {
	return &zLogger{
		logger:  logger,
		slogger: logger.Sugar(),
	}
}

// Debug 输出"Debug"级别日志信息
func (z *zLogger) Debug(args ...any) {
	z.slogger.Debug(args...)
}

// Debugf 输出格式化的"Debug"级别日志信息
func (z *zLogger) Debugf(template string, args ...any) {
	z.slogger.Debugf(template, args...)
}

// Debugw 输出键值对形式的"Debug"级别日志信息
func (z *zLogger) Debugw(msg string, keysAndValues ...any) {
	z.slogger.Debugw(msg, keysAndValues...)
}

// Debugx 以zapfield方式，极速输出"Debug"级别日志信息
func (z *zLogger) Debugx(msg string, fields ...zapcore.Field) {
	z.logger.Debug(msg, fields...)
}

// Info 输出"Info"级别日志信息
func (z *zLogger) Info(args ...any) {
	z.slogger.Info(args...)
}

// Infof 输出格式化的"Info"级别日志信息
func (z *zLogger) Infof(template string, args ...any) {
	z.slogger.Infof(template, args...)
}

// Infow 输出键值对形式的"Info"级别日志信息
func (z *zLogger) Infow(msg string, keysAndValues ...any) {
	z.slogger.Infow(msg, keysAndValues...)
}

// Infox 以zapfield方式，极速输出"Info"级别日志信息
func (z *zLogger) Infox(msg string, fields ...zapcore.Field) {
	z.logger.Info(msg, fields...)
}

// Warn 输出"Warn"级别日志信息
func (z *zLogger) Warn(args ...any) {
	z.slogger.Warn(args...)
}

// Warnf 输出格式化的"Warn"级别日志信息
func (z *zLogger) Warnf(template string, args ...any) {
	z.slogger.Warnf(template, args...)
}

// Warnw 输出键值对形式的"Warn"级别日志信息
func (z *zLogger) Warnw(msg string, keysAndValues ...any) {
	z.slogger.Warnw(msg, keysAndValues...)
}

// Warnx 以zapfield方式，极速输出"Warn"级别日志信息
func (z *zLogger) Warnx(msg string, fields ...zapcore.Field) {
	z.logger.Warn(msg, fields...)
}

// Error 输出"Error"级别日志信息
func (z *zLogger) Error(args ...any) {
	z.slogger.Error(args...)
}

// Errorf 输出格式化的"Error"级别日志信息
func (z *zLogger) Errorf(template string, args ...any) {
	z.slogger.Errorf(template, args...)
}

// Errorw 输出键值对形式的"Error"级别日志信息
func (z *zLogger) Errorw(msg string, keysAndValues ...any) {
	z.slogger.Errorw(msg, keysAndValues...)
}

// Errorx 以zapfield方式，极速输出"Error"级别日志信息
func (z *zLogger) Errorx(msg string, fields ...zapcore.Field) {
	z.logger.Error(msg, fields...)
}

// Sync 将缓冲内容刷写到输出端
func (z *zLogger) Sync() error {
	return z.logger.Sync()
}

func (z *zLogger) Enabled(level zapcore.Level) bool {
	return z.logger.Core().Enabled(level)
}

// WithFields 获取携带固定字段的子Logger
func (z *zLogger) WithFields(fields ...zap.Field) ILogger {
	return newzLogger(z.logger.With(fields...))
}
