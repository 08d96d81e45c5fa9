package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 带 Context 的格式化日志，Context 中的链路字段自动附加
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
	Sync() error
}

// 从 Context 读取的字段，值为 string 或 int
var ctxFieldKeys = []string{"trace_id", "worker_id", "action_type", "carrier_id"}

// ZapLogger zap 实现
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger 输出 JSON 到 stdout
func NewZapLogger(level string) (Logger, error) {
	return NewZapLoggerWithOutput(level, "stdout")
}

// NewZapLoggerWithOutput output 为 zap 输出路径（stdout/stderr/文件），未知级别按 info 处理
func NewZapLoggerWithOutput(level string, output string) (Logger, error) {
	zapLevel := zapcore.InfoLevel
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "json",
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &ZapLogger{logger: logger}, nil
}

// NewNopLogger 丢弃全部输出（测试与未注入日志时使用）
func NewNopLogger() Logger {
	return &ZapLogger{logger: zap.NewNop()}
}

func (l *ZapLogger) fields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	var fields []zap.Field
	for _, key := range ctxFieldKeys {
		switch v := ctx.Value(key).(type) {
		case string:
			if v != "" {
				fields = append(fields, zap.String(key, v))
			}
		case int:
			fields = append(fields, zap.Int(key, v))
		}
	}
	return fields
}

func (l *ZapLogger) logf(ctx context.Context, level zapcore.Level, format string, args []interface{}) {
	if ce := l.logger.Check(level, fmt.Sprintf(format, args...)); ce != nil {
		ce.Write(l.fields(ctx)...)
	}
}

func (l *ZapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, zapcore.DebugLevel, format, args)
}

func (l *ZapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, zapcore.InfoLevel, format, args)
}

func (l *ZapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, zapcore.WarnLevel, format, args)
}

func (l *ZapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.logf(ctx, zapcore.ErrorLevel, format, args)
}

// Sync 刷新缓冲区
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
