package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/raysh454/proxyview/internal/logging"
)

func TestStdoutLogger_WritesJSONLine(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWriterLogger("relay", &buf)

	logger.Info("fetched", logging.Field{Key: "status", Value: 200})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "info" || entry["msg"] != "fetched" || entry["component"] != "relay" {
		t.Errorf("unexpected entry: %v", entry)
	}
	fields, _ := entry["fields"].(map[string]any)
	if fields["status"] != float64(200) {
		t.Errorf("expected status field 200, got %v", fields["status"])
	}
}

func TestStdoutLogger_WithCarriesFieldsAndComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWriterLogger("root", &buf).
		With(logging.Field{Key: "component", Value: "server"}, logging.Field{Key: "event_id", Value: "abc"})

	logger.Warn("slow")

	out := buf.String()
	if !strings.Contains(out, `"component":"server"`) {
		t.Errorf("expected component override, got %s", out)
	}
	if !strings.Contains(out, `"event_id":"abc"`) {
		t.Errorf("expected persistent field, got %s", out)
	}
}

func TestZapLogger_ForwardsFields(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.DebugLevel)
	logger := logging.NewZapFromCore(zap.New(core)).With(logging.Field{Key: "component", Value: "relay"})

	logger.Debug("attempt", logging.Field{Key: "url", Value: "https://example.com/"})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["component"] != "relay" || ctx["url"] != "https://example.com/" {
		t.Errorf("unexpected context: %v", ctx)
	}
}

func TestNewZapLogger_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()
	if _, err := logging.NewZapLogger("loud", "json"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNop_DoesNotPanic(t *testing.T) {
	t.Parallel()
	l := logging.Nop().With(logging.Field{Key: "k", Value: 1})
	l.Debug("x")
	l.Error("y")
}
