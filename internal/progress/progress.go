// Package progress renders terminal progress bars for the pipeline stages,
// the audio download, and local transcription. Bars are drawn only when the
// output is a terminal; otherwise every bar is a no-op and the structured
// logs carry progress instead.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Bar is a single progress display.
type Bar interface {
	// Set moves the bar to an absolute value.
	Set(value int64)
	// SetMax changes the total; a negative total renders a spinner.
	SetMax(total int64)
	Describe(description string)
	// Finish completes the bar and ends its line.
	Finish()
}

// Factory creates bars that share one writer.
type Factory struct {
	out     io.Writer
	enabled bool
}

// NewFactory draws to w when it is a terminal.
func NewFactory(w io.Writer) *Factory {
	return &Factory{out: w, enabled: IsTerminal(w)}
}

// NewFactoryEnabled forces rendering on or off regardless of w.
func NewFactoryEnabled(w io.Writer, enabled bool) *Factory {
	return &Factory{out: w, enabled: enabled && w != nil}
}

// Disabled returns a factory whose bars draw nothing.
func Disabled() *Factory {
	return &Factory{}
}

// Enabled reports whether bars are drawn.
func (f *Factory) Enabled() bool {
	return f != nil && f.enabled
}

// Bytes returns a byte-count bar. total <= 0 means unknown.
func (f *Factory) Bytes(total int64, description string) Bar {
	if !f.Enabled() {
		return noopBar{}
	}
	if total <= 0 {
		total = -1
	}
	return f.newBar(total, description, progressbar.OptionShowBytes(true))
}

// Percent returns a 0-100 bar.
func (f *Factory) Percent(description string) Bar {
	if !f.Enabled() {
		return noopBar{}
	}
	return f.newBar(100, description)
}

// Steps returns a bar counting n discrete steps.
func (f *Factory) Steps(n int, description string) Bar {
	if !f.Enabled() {
		return noopBar{}
	}
	return f.newBar(int64(n), description, progressbar.OptionShowCount())
}

func (f *Factory) newBar(total int64, description string, extra ...progressbar.Option) Bar {
	out := f.out
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100 * time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	}
	opts = append(opts, extra...)
	return &termBar{bar: progressbar.NewOptions64(total, opts...)}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type termBar struct {
	bar *progressbar.ProgressBar
}

func (b *termBar) Set(value int64) {
	_ = b.bar.Set64(value)
}

func (b *termBar) SetMax(total int64) {
	if total <= 0 {
		total = -1
	}
	if total == b.bar.GetMax64() {
		return
	}
	b.bar.ChangeMax64(total)
}

func (b *termBar) Describe(description string) {
	b.bar.Describe(description)
}

func (b *termBar) Finish() {
	if b.bar.IsFinished() {
		return
	}
	_ = b.bar.Finish()
}

type noopBar struct{}

func (noopBar) Set(int64)       {}
func (noopBar) SetMax(int64)    {}
func (noopBar) Describe(string) {}
func (noopBar) Finish()         {}
