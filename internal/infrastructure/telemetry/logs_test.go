package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type exportedLog struct {
	body     string
	severity otellog.Severity
}

// memoryLogExporter keeps exported records in memory.
type memoryLogExporter struct {
	mu      sync.Mutex
	records []exportedLog
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, exportedLog{body: r.Body().AsString(), severity: r.Severity()})
	}
	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryLogExporter) exported() []exportedLog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]exportedLog(nil), e.records...)
}

func TestLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := NewLoggerProvider(ctx, LogsConfig{ServiceName: "storefront-test"}, zap.NewNop())
	require.NoError(t, err)

	base := zap.NewNop()
	assert.Same(t, base, lp.Attach(base))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLoggerProvider_AttachExportsAtLevel(t *testing.T) {
	exporter := &memoryLogExporter{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
		logger:   zap.NewNop(),
		cfg:      LogsConfig{Enabled: true, ServiceName: "storefront-test", Level: zapcore.InfoLevel},
	}

	core, local := observer.New(zapcore.DebugLevel)
	log := lp.Attach(zap.New(core))

	log.Debug("cart restored")
	log.With(zap.String("seller", "Miel de la Sierra")).Warn("seller channel rejected")
	require.NoError(t, lp.Shutdown(context.Background()))

	assert.Len(t, local.All(), 2, "local output keeps every level")

	got := exporter.exported()
	require.Len(t, got, 1)
	assert.Equal(t, "seller channel rejected", got[0].body)
	assert.Equal(t, otellog.SeverityWarn, got[0].severity)
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}

	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	log := zap.New(core.With([]zapcore.Field{zap.String("component", "dispatch")}))
	log.Info("dropped")
	log.Error("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "dispatch", entry.ContextMap()["component"])
}
