package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// stderrTailLines bounds how much tool output is kept for error messages.
const stderrTailLines = 20

// waitDelay caps how long Wait blocks on output still held open by
// grandchildren after the direct child has exited or been killed.
const waitDelay = 2 * time.Second

// Executor abstracts command execution so external tools can be stubbed in
// tests.
type Executor interface {
	// Run streams stdout and stderr line by line to onLine. When onLine returns
	// an error the process is killed and that error is returned.
	Run(ctx context.Context, binary string, args []string, onLine func(string) error) error
	// Output runs the command and returns stdout.
	Output(ctx context.Context, binary string, args []string) ([]byte, error)
}

// CommandExecutor runs real processes via os/exec.
type CommandExecutor struct {
	// Env is appended to the inherited environment.
	Env []string
}

func (e CommandExecutor) command(ctx context.Context, binary string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	cmd.WaitDelay = waitDelay
	return cmd
}

// Output implements Executor.
func (e CommandExecutor) Output(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := e.command(ctx, binary, args)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &CommandError{Binary: binary, Err: err, Stderr: tail(stderr.String(), stderrTailLines)}
	}
	return out, nil
}

// Run implements Executor.
func (e CommandExecutor) Run(ctx context.Context, binary string, args []string, onLine func(string) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Writers rather than StdoutPipe so Wait owns the copy and WaitDelay can
	// cut it off when a grandchild (ffmpeg under yt-dlp) outlives the child.
	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd := e.command(ctx, binary, args)
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	if err := cmd.Start(); err != nil {
		return &CommandError{Binary: binary, Err: err}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		abortErr error
		recent   []string
	)

	forward := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		recent = append(recent, line)
		if len(recent) > stderrTailLines {
			recent = recent[len(recent)-stderrTailLines:]
		}
		if abortErr != nil || onLine == nil {
			return
		}
		if err := onLine(line); err != nil {
			abortErr = err
			cancel()
		}
	}

	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		scanner.Split(scanLinesOrCR)
		for scanner.Scan() {
			forward(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			forward(fmt.Sprintf("output truncated: %v", err))
		}
		// Keep draining so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}

	wg.Add(2)
	go scan(stdoutR)
	go scan(stderrR)

	waitErr := cmd.Wait()
	_ = stdoutW.Close()
	_ = stderrW.Close()
	wg.Wait()
	if abortErr != nil {
		return abortErr
	}
	if errors.Is(waitErr, exec.ErrWaitDelay) && ctx.Err() == nil {
		// The child itself exited cleanly; a leftover grandchild held output.
		waitErr = nil
	}
	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &CommandError{Binary: binary, Err: waitErr, Stderr: strings.Join(recent, "\n")}
	}
	return nil
}

// CommandError reports a failed external command with its trailing output.
type CommandError struct {
	Binary string
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Binary, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// IsNotInstalled reports whether err means the binary could not be found.
func IsNotInstalled(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// scanLinesOrCR splits on \n or \r so carriage-return progress output from
// download and transcription tools arrives as separate lines.
func scanLinesOrCR(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance := i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func tail(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
