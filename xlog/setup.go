package xlog

import (
	"io"
	"os"
	"time"

	"github.com/DeRuina/timberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// levelController 日志输出级别控制器
	levelController = zap.NewAtomicLevelAt(zap.DebugLevel)
)

// initDefaultLogger 未经Setup时的缺省配置 输出到标准输出
func initDefaultLogger() {
	SetupLogger("")
}

// CloseLogger 运行结束时将日志落盘
func CloseLogger() {
	if rootLogger != nil {
		_ = rootLogger.Sync()
	}
}

// SetupLogger 配置根logger
// logfile为空输出到标准输出 否则输出到滚动切割文件
func SetupLogger(logfile string) {
	config := zapcore.EncoderConfig{
		CallerKey:     "line",
		LevelKey:      "level",
		MessageKey:    "message",
		TimeKey:       "time",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeTime: func(t time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(t.Format("2006-01-02 15:04:05.999"))
		},
		EncodeLevel: zapcore.CapitalLevelEncoder,
		EncodeCaller: func(caller zapcore.EntryCaller, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString("[" + caller.TrimmedPath() + "]")
		},
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		ConsoleSeparator: " ",
	}
	encoder := zapcore.NewConsoleEncoder(config)

	core := zapcore.NewCore(encoder, os.Stdout, levelController)
	if logfile != "" {
		core = zapcore.NewCore(encoder, zapcore.AddSync(fileWriter(logfile)), levelController)
	}
	// 上跳2层定位真实调用点 Error级别附带堆栈
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.AddStacktrace(zapcore.ErrorLevel))

	rootLogger = newzLogger(logger)
}

// SetLevel 调整输出级别
func SetLevel(l zapcore.Level) {
	levelController.SetLevel(l)
}

func fileWriter(path string) io.Writer {
	return &timberjack.Logger{
		Filename:         path,
		MaxBackups:       7,
		MaxSize:          50,
		MaxAge:           7,
		Compression:      "none",
		LocalTime:        true,
		RotationInterval: 24 * time.Hour,
		BackupTimeFormat: "2006-01-02-15-04-05",
	}
}
