package progress_test

import (
	"bytes"
	"strings"
	"testing"

	"ytanalyzer/internal/progress"
)

func TestNonTerminalWriterDisablesBars(t *testing.T) {
	var buf bytes.Buffer
	factory := progress.NewFactory(&buf)
	if factory.Enabled() {
		t.Fatal("expected buffer to be treated as non-terminal")
	}
	bar := factory.Percent("analysis")
	bar.Set(50)
	bar.Finish()
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestEnabledBarWritesDescription(t *testing.T) {
	var buf bytes.Buffer
	factory := progress.NewFactoryEnabled(&buf, true)
	bar := factory.Steps(4, "metadata")
	bar.Set(4)
	bar.Finish()
	if !strings.Contains(buf.String(), "metadata") {
		t.Fatalf("expected description in output, got %q", buf.String())
	}
}

func TestBytesBarAcceptsUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := progress.NewFactoryEnabled(&buf, true).Bytes(0, "download")
	bar.Set(1024)
	bar.SetMax(4096)
	bar.Set(4096)
	bar.Finish()
	if buf.Len() == 0 {
		t.Fatal("expected rendered output")
	}
}

func TestNilAndDisabledFactories(t *testing.T) {
	var factory *progress.Factory
	if factory.Enabled() {
		t.Fatal("nil factory should be disabled")
	}
	factory.Percent("x").Finish()
	progress.Disabled().Bytes(10, "y").Set(5)
}
