package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/rivebrain/internal/model"
	"github.com/rcliao/rivebrain/internal/parser"
)

func TestNew(t *testing.T) {
	log, err := New("warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = New("loud")
	assert.Error(t, err)
}

func TestReporter_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewReporter(zap.New(core))

	r.Report(parser.Diagnostic{Severity: parser.Trace, File: "a.rs", Message: "Parsing a.rs"})
	r.Report(parser.Diagnostic{Severity: parser.Warning, File: "a.rs", Line: 7, Message: "Reply found before a trigger"})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "Reply found before a trigger", entries[1].Message)

	ctx := entries[1].ContextMap()
	assert.Equal(t, "a.rs", ctx["file"])
	assert.EqualValues(t, 7, ctx["line"])
	assert.NotContains(t, entries[0].ContextMap(), "line")
}

func TestReporter_FromParser(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := &parser.Collector{}
	p := parser.New(model.NewBrain(), parser.Options{
		Reporter: Tee(NewReporter(zap.New(core)), c),
	})

	require.NoError(t, p.Parse("bad.rs", []string{"- orphan", "? nope"}))

	assert.Equal(t, 2, logs.Len())
	assert.Len(t, c.Warnings(), 2)
	assert.Equal(t, 1, logs.FilterField(zap.Int("line", 2)).Len())
}
