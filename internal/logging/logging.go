// Package logging builds the zap logger and adapts it to parser diagnostics.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/rivebrain/internal/parser"
)

// New builds a logger for the given level. "debug" uses the development
// console encoder so parser traces stay readable.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	config := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}

// Reporter forwards parser diagnostics to a zap logger: traces at debug,
// warnings at warn.
type Reporter struct {
	log *zap.Logger
}

// NewReporter returns a Reporter writing to log.
func NewReporter(log *zap.Logger) *Reporter {
	return &Reporter{log: log}
}

// Report implements parser.Reporter.
func (r *Reporter) Report(d parser.Diagnostic) {
	fields := []zap.Field{zap.String("file", d.File)}
	if d.Line > 0 {
		fields = append(fields, zap.Int("line", d.Line))
	}

	if d.Severity == parser.Warning {
		r.log.Warn(d.Message, fields...)
		return
	}
	r.log.Debug(d.Message, fields...)
}

// Tee sends every diagnostic to each reporter in turn.
func Tee(reporters ...parser.Reporter) parser.Reporter {
	return parser.ReporterFunc(func(d parser.Diagnostic) {
		for _, r := range reporters {
			r.Report(d)
		}
	})
}
