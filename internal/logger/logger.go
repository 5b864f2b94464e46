package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options how the console logs
type Options struct {
	Level   string
	Format  string // FormatConsole (default) or FormatJSON
	Service string
	// Output defaults to stderr; stdout belongs to the rendered waitlist
	Output zapcore.WriteSyncer
}

// New builds the logger. Console output is terse: clock time, level and
// message. JSON output is meant for collection and carries caller and
// stack traces on errors.
func New(opts Options) (*zap.Logger, error) {
	out := opts.Output
	if out == nil {
		out = zapcore.Lock(os.Stderr)
	}

	var (
		encoder zapcore.Encoder
		extra   []zap.Option
	)
	switch opts.Format {
	case "", FormatConsole:
		encoder = zapcore.NewConsoleEncoder(consoleEncoding())
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(jsonEncoding())
		extra = append(extra, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(ParseLevel(opts.Level)))
	log := zap.New(core, append(extra, zap.ErrorOutput(out))...)
	if opts.Service != "" {
		log = log.With(zap.String("service", opts.Service))
	}
	return log, nil
}

func consoleEncoding() zapcore.EncoderConfig {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey
	return cfg
}

func jsonEncoding() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// ParseLevel maps a level name to a zap level, falling back to info.
func ParseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zapcore.WarnLevel
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
