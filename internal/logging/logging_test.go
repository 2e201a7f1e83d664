package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Debug("hidden", "k", 1)
	l.Info("shown", "k", 2)

	out := buf.String()
	if strings.Contains(out, "msg=hidden") {
		t.Fatalf("debug record logged without verbose:\n%s", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=2") {
		t.Fatalf("expected info record in output:\n%s", out)
	}

	buf.Reset()
	New(&buf, true).Debug("dbg", "a", "b")
	if !strings.Contains(buf.String(), "level=DEBUG") {
		t.Fatalf("expected debug record with verbose:\n%s", buf.String())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
}
