package log

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, name string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf)
	return ForService(name), buf
}

func TestLevelsAndPrefix(t *testing.T) {
	SetGlobalDebug(false)
	l, buf := newTestLogger(t, "shards")

	tests := []struct {
		log   func(string, ...any)
		level string
	}{
		{l.Infof, LevelInfo},
		{l.Warnf, LevelWarn},
		{l.Errorf, LevelError},
	}
	for _, tt := range tests {
		buf.Reset()
		tt.log("shard %d failed", 3)
		out := buf.String()
		if !strings.Contains(out, tt.level+" [shards>] shard 3 failed") {
			t.Errorf("unexpected %s line: %q", tt.level, out)
		}
	}
}

func TestForServiceIsMemoized(t *testing.T) {
	if ForService("api") != ForService("api") {
		t.Error("ForService should return the same logger for a name")
	}
	if ForService("").Name() != "unknown" {
		t.Error("empty names should map to unknown")
	}
}

func TestDebugPerService(t *testing.T) {
	SetGlobalDebug(false)

	const name = "debug_per_service"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	l.Debugf("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("debug line written while debug is off")
	}

	EnableDebugFor(name)
	l.Debugf("visible")
	if !strings.Contains(buf.String(), "DEBUG ["+name+">] visible") {
		t.Fatalf("expected debug line, got %q", buf.String())
	}
	if DebugEnabledFor("some_other_service") {
		t.Error("enabling one service leaked to another")
	}
}

func TestDebugGlobal(t *testing.T) {
	SetGlobalDebug(false)
	const name = "debug_global"
	DisableDebugFor(name)
	l, buf := newTestLogger(t, name)

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	l.Debugf("global visible")
	if !strings.Contains(buf.String(), "global visible") {
		t.Fatalf("expected debug line with global debug, got %q", buf.String())
	}
}

func TestEnableDebugList(t *testing.T) {
	SetGlobalDebug(false)
	EnableDebugList(" list_a, ,list_b")
	if !DebugEnabledFor("list_a") || !DebugEnabledFor("list_b") {
		t.Error("listed services should have debug enabled")
	}
	if GlobalDebug() {
		t.Error("a plain list must not enable global debug")
	}

	EnableDebugList("all")
	defer SetGlobalDebug(false)
	if !GlobalDebug() {
		t.Error("all should enable global debug")
	}
}
