package logger

import (
	"io"
	"os"
	"path/filepath"

	"tvshell/internal/config"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 定义日志接口
type Logger interface {
	// Debug 记录调试信息
	Debug(msg string, fields ...any)

	// Info 记录一般信息
	Info(msg string, fields ...any)

	// Warn 记录警告信息
	Warn(msg string, fields ...any)

	// Error 记录错误信息
	Error(msg string, fields ...any)

	// Err 记录错误信息
	Err(err error, msg string, fields ...any)
}

// Options 日志选项
type Options struct {
	Level   string
	Writers []string
	// Console 控制台输出目标，为空时使用 os.Stderr
	Console io.Writer
	// File 日志文件路径，为空时使用应用数据目录下的 logs/app.log
	File string
}

// ZeroLogger 日志组件
type ZeroLogger struct {
	logger zerolog.Logger
}

// New 创建日志组件，没有可用输出时返回空日志
func New(opts Options) *ZeroLogger {
	writers := make([]io.Writer, 0, len(opts.Writers))
	for _, writer := range opts.Writers {
		switch writer {
		case "console":
			console := opts.Console
			if console == nil {
				console = os.Stderr
			}
			writers = append(writers, console)
		case "file":
			filename := opts.File
			if filename == "" {
				var err error
				if filename, err = defaultLogPath(); err != nil {
					continue
				}
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   filename,
				MaxSize:    1,
				MaxAge:     30,
				MaxBackups: 3,
				LocalTime:  true,
				Compress:   false,
			})
		}
	}

	if len(writers) == 0 || opts.Level == "none" {
		return NewNop()
	}

	zerolog.TimeFieldFormat = "2006-01-02 15:04:05"
	logger := zerolog.New(io.MultiWriter(writers...)).
		With().
		Caller().
		Timestamp().
		Logger().
		Level(parseLevel(opts.Level))

	return &ZeroLogger{logger: logger}
}

// NewNop 创建一个空的日志记录器
func NewNop() *ZeroLogger { return &ZeroLogger{logger: zerolog.Nop()} }

// With 返回附带固定字段的子日志
func (z *ZeroLogger) With(fields ...any) *ZeroLogger {
	return &ZeroLogger{logger: z.logger.With().Fields(fields).Logger()}
}

// Info 记录信息
func (z *ZeroLogger) Info(msg string, fields ...any) {
	z.logger.Info().CallerSkipFrame(1).Fields(fields).Msg(msg)
}

// Error 记录错误
func (z *ZeroLogger) Error(msg string, fields ...any) {
	z.logger.Error().CallerSkipFrame(1).Fields(fields).Msg(msg)
}

// Debug 记录调试信息
func (z *ZeroLogger) Debug(msg string, fields ...any) {
	z.logger.Debug().CallerSkipFrame(1).Fields(fields).Msg(msg)
}

// Warn 记录警告
func (z *ZeroLogger) Warn(msg string, fields ...any) {
	z.logger.Warn().CallerSkipFrame(1).Fields(fields).Msg(msg)
}

// Err 记录错误信息
func (z *ZeroLogger) Err(err error, msg string, fields ...any) {
	z.logger.Err(err).CallerSkipFrame(1).Fields(fields).Msg(msg)
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.DebugLevel
	}
}

// defaultLogPath 获取日志文件路径
func defaultLogPath() (string, error) {
	dir, err := config.AppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "app.log"), nil
}
