// Package logging 基于 zerolog 构建结构化日志。
//
// 组件通过值传递接收 zerolog.Logger，并使用 With().Str("component", ...) 派生子 logger：
//
//	logger := logging.New(logging.Config{Level: "info", Format: "json"})
//	reg := registry.New(registry.WithLogger(logger))
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config 是日志配置
type Config struct {
	Level     string    `koanf:"level" yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic disabled"`
	Format    string    `koanf:"format" yaml:"format" validate:"omitempty,oneof=json console"`
	Caller    bool      `koanf:"caller" yaml:"caller"`
	Timestamp bool      `koanf:"timestamp" yaml:"timestamp"`
	Output    io.Writer `koanf:"-" yaml:"-"`
}

// DefaultConfig 返回默认日志配置：info 级别、json 格式、带时间戳、输出到 stderr
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// New 按配置创建 logger
func New(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}

	logger := zerolog.New(output).Level(ParseLevel(cfg.Level))
	if cfg.Timestamp {
		logger = logger.With().Timestamp().Logger()
	}
	if cfg.Caller {
		logger = logger.With().Caller().Logger()
	}
	return logger
}

// Nop 返回丢弃所有输出的 logger，作为组件的默认值
func Nop() zerolog.Logger { return zerolog.Nop() }

// Component 派生带 component 字段的子 logger
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// ParseLevel 将字符串级别转为 zerolog.Level，无法识别时为 info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
