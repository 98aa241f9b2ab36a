package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines structured logging interface
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
	With(args ...any) Logger
}

// ZapLogger implements Logger on a zap SugaredLogger. args are alternating keys and values.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// New creates a JSON logger writing to w at the given level
func New(level string, w io.Writer) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), ParseLevel(level))
	return &ZapLogger{logger: zap.New(core).Sugar()}
}

func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Info(msg string, args ...any)  { l.logger.Infow(msg, args...) }
func (l *ZapLogger) Error(msg string, args ...any) { l.logger.Errorw(msg, args...) }
func (l *ZapLogger) Warn(msg string, args ...any)  { l.logger.Warnw(msg, args...) }
func (l *ZapLogger) Debug(msg string, args ...any) { l.logger.Debugw(msg, args...) }

func (l *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{logger: l.logger.With(args...)}
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	SetDefault(New("info", os.Stdout))
}

// Default returns the process-wide logger
func Default() Logger {
	return *defaultLogger.Load()
}

// SetDefault replaces the process-wide logger. Any Logger implementation is accepted.
func SetDefault(l Logger) {
	defaultLogger.Store(&l)
}
