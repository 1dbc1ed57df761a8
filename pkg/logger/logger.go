package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"faculty-portal/config"
)

const serviceName = "faculty-portal"

// NewLogger 按 log.level / log.format / log.output_paths 构建日志器
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	zapCfg := encoderPreset(cfg.Format)
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}
	// debug 下关闭采样，逐条保留请求日志
	if level == zapcore.DebugLevel {
		zapCfg.Sampling = nil
	}

	logger, err := zapCfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// encoderPreset console 为彩色开发格式，其余为 JSON
func encoderPreset(format string) zap.Config {
	if format == "console" {
		c := zap.NewDevelopmentConfig()
		c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		c.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
		return c
	}
	c := zap.NewProductionConfig()
	c.EncoderConfig.TimeKey = "ts"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	return c
}
