package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_nilWriter_returnsTracer(t *testing.T) {
	tr := New(nil)
	if tr == nil {
		t.Error("New(nil) returned nil")
	}
}

func TestEnabled_nilWriter_returnsFalse(t *testing.T) {
	tr := New(nil)
	if tr.Enabled() {
		t.Error("Enabled() with nil writer = true, want false")
	}
}

func TestEnabled_nonNilWriter_returnsTrue(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	if !tr.Enabled() {
		t.Error("Enabled() with non-nil writer = false, want true")
	}
}

func TestSection_nilWriter_noOutput(t *testing.T) {
	tr := New(nil)
	tr.Section("Prompt")
	// No panic and no writer to check
}

func TestSection_nonNilWriter_writesHeader(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Section("Prompt")
	got := buf.String()
	want := "\n[commitgen:trace] === Prompt ===\n"
	if got != want {
		t.Errorf("Section(%q) wrote %q, want %q", "Prompt", got, want)
	}
}

func TestPrintf_nilWriter_noOutput(t *testing.T) {
	tr := New(nil)
	tr.Printf("provider=%s\n", "ollama")
	// No panic
}

func TestPrintf_nonNilWriter_writesFormatted(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Printf("provider=%s\n", "ollama")
	got := buf.String()
	want := "provider=ollama\n"
	if got != want {
		t.Errorf("Printf wrote %q, want %q", got, want)
	}
}

func TestSectionAndPrintf_combined(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)
	tr.Section("Raw response")
	tr.Printf("bytes=%d\n", 512)
	got := buf.String()
	if !strings.Contains(got, "[commitgen:trace] === Raw response ===") {
		t.Errorf("output missing section header: %q", got)
	}
	if !strings.Contains(got, "bytes=512") {
		t.Errorf("output missing Printf content: %q", got)
	}
}
