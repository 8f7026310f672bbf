package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/raysh454/policysim/internal/logging"
)

func TestStdoutLogger_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewStdoutLogger("loader")
	l.SetOutput(&buf)

	l.Info("dataset loaded", logging.Field{Key: "records", Value: 3})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v (raw %q)", err, buf.String())
	}
	if entry["level"] != "info" || entry["msg"] != "dataset loaded" || entry["component"] != "loader" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	fields, _ := entry["fields"].(map[string]any)
	if fields["records"] != float64(3) {
		t.Errorf("expected records=3, got %v", fields["records"])
	}
}

func TestStdoutLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewStdoutLogger("")
	l.SetOutput(&buf)
	l.SetLevel(logging.LevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "shown") {
		t.Fatalf("expected only the warn entry, got %q", buf.String())
	}
}

func TestStdoutLogger_SetLevelWhileLogging(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewStdoutLogger("")
	l.SetOutput(&buf)
	child := l.With(logging.Field{Key: "component", Value: "watcher"})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Info("tick")
				child.Warn("tock")
			}
		}()
	}
	for j := 0; j < 100; j++ {
		if j%2 == 0 {
			l.SetLevel(logging.LevelError)
		} else {
			l.SetLevel(logging.LevelDebug)
		}
	}
	wg.Wait()

	l.SetLevel(logging.LevelError)
	buf.Reset()
	l.Info("hidden")
	l.Error("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output after SetLevel: %q", out)
	}
}

func TestStdoutLogger_WithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := logging.NewStdoutLogger("root")
	l.SetOutput(&buf)

	child := l.With(logging.Field{Key: "component", Value: "watcher"}, logging.Field{Key: "path", Value: "a.csv"})
	child.Info("changed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["component"] != "watcher" {
		t.Errorf("expected component watcher, got %v", entry["component"])
	}
	fields, _ := entry["fields"].(map[string]any)
	if fields["path"] != "a.csv" {
		t.Errorf("expected persistent path field, got %v", fields)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logging.Level{
		"":        logging.LevelInfo,
		"debug":   logging.LevelDebug,
		"WARNING": logging.LevelWarn,
		"error":   logging.LevelError,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Config{Format: "xml"}, "x"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestZapLogger_ForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := logging.WrapZap(zap.New(core))

	l.With(logging.Field{Key: "dataset_id", Value: "abc"}).
		Warn("reload failed", logging.Field{Key: "error", Value: errors.New("boom")})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["dataset_id"] != "abc" {
		t.Errorf("expected dataset_id field, got %v", ctx)
	}
	if ctx["error"] != "boom" {
		t.Errorf("expected error field boom, got %v", ctx["error"])
	}
}
