package services_test

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"ytanalyzer/internal/services"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandExecutorRunStreamsLines(t *testing.T) {
	requireShell(t)
	var lines []string
	err := services.CommandExecutor{}.Run(context.Background(), "sh", []string{"-c", `printf 'one\rtwo\nthree\n'`}, func(line string) error {
		if line != "" {
			lines = append(lines, line)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Join(lines, ","); got != "one,two,three" {
		t.Fatalf("unexpected lines %q", got)
	}
}

func TestCommandExecutorRunAbortsOnCallbackError(t *testing.T) {
	requireShell(t)
	stop := errors.New("stop")
	start := time.Now()
	err := services.CommandExecutor{}.Run(context.Background(), "sh", []string{"-c", "echo tick; exec sleep 30"}, func(string) error {
		return stop
	})
	if !errors.Is(err, stop) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("process was not killed after callback error")
	}
}

func TestCommandExecutorRunReportsFailure(t *testing.T) {
	requireShell(t)
	err := services.CommandExecutor{}.Run(context.Background(), "sh", []string{"-c", "echo 'ERROR: video unavailable' >&2; exit 1"}, nil)
	var cmdErr *services.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %v", err)
	}
	if !strings.Contains(cmdErr.Stderr, "video unavailable") {
		t.Fatalf("expected stderr tail, got %q", cmdErr.Stderr)
	}
}

func TestCommandExecutorOutput(t *testing.T) {
	requireShell(t)
	out, err := services.CommandExecutor{Env: []string{"YTA_TEST=value"}}.Output(context.Background(), "sh", []string{"-c", "printf %s \"$YTA_TEST\""})
	if err != nil {
		t.Fatalf("Output returned error: %v", err)
	}
	if string(out) != "value" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = services.CommandExecutor{}.Output(context.Background(), "definitely-not-a-real-binary-yta", nil)
	if !services.IsNotInstalled(err) {
		t.Fatalf("expected not-installed error, got %v", err)
	}
}

func TestCommandExecutorRunSurvivesOverlongLine(t *testing.T) {
	requireShell(t)
	if _, err := exec.LookPath("head"); err != nil {
		t.Skip("coreutils not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	// A 1.2MB line exceeds the scanner limit; the trailing output must still
	// be consumed or the child blocks on a full pipe.
	script := `head -c 1200000 /dev/zero | tr '\0' a; echo; yes '' | head -n 300000; echo done`
	done := make(chan error, 1)
	go func() {
		done <- services.CommandExecutor{}.Run(ctx, "sh", []string{"-c", script}, nil)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after an overlong output line")
	}
}

func TestCommandExecutorRunReturnsWhenGrandchildHoldsOutput(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- services.CommandExecutor{}.Run(ctx, "sh", []string{"-c", "sleep 30 & sleep 30"}, nil)
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline error, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 10*time.Second {
			t.Fatalf("Run took %s after cancellation", elapsed)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return while a background process held stdout")
	}
}

func TestCommandExecutorRunIgnoresLingeringGrandchildOnSuccess(t *testing.T) {
	requireShell(t)
	start := time.Now()
	err := services.CommandExecutor{}.Run(context.Background(), "sh", []string{"-c", "sleep 30 & echo started"}, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("Run waited %s for a background process", elapsed)
	}
}
