package logger

import (
	"testing"

	"github.com/samvad-hq/drawing-uploader/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestInitSetsPackageLogger(t *testing.T) {
	prev := S
	t.Cleanup(func() { S = prev })

	log, err := Init(&config.Config{AppName: "test", Env: "test", LogLevel: "debug"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if S == nil {
		t.Fatalf("expected package logger to be set")
	}
	if !S.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}
	log.InfoObj("logger ready", "meta", map[string]any{"ok": true})
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	prev := S
	S = nil
	t.Cleanup(func() { S = prev })

	InfoObj("ignored", "k", 1)
	ErrorObj("ignored", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close before Init: %v", err)
	}
	NopLogger{}.WarnObj("ignored", "k", 1)
}
