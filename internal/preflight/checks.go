package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/services/gemini"
	"ytanalyzer/internal/services/llm"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckLLMKey reports whether the active LLM backend has an API key.
func CheckLLMKey(cfg *config.Config) Result {
	name := fmt.Sprintf("LLM API key (%s)", cfg.LLM.Provider)
	if err := cfg.RequireLLMKey(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckYouTubeAPIKey reports whether Data API metadata is enabled. Without a
// key yt-dlp supplies metadata and comments.
func CheckYouTubeAPIKey(cfg *config.Config) Result {
	const name = "YouTube Data API key"
	if cfg.YouTube.APIKey == "" {
		return Result{Name: name, Optional: true, Detail: "not set (metadata via yt-dlp)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CheckLLM verifies that the active LLM backend is reachable and the key is
// valid. It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, cfg *config.Config) Result {
	active := cfg.ActiveLLM()
	name := fmt.Sprintf("LLM API (%s)", active.Model)
	if active.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var client healthChecker
	if active.Provider == config.ProviderGemini {
		g, err := gemini.NewClient(checkCtx, gemini.Config{APIKey: active.APIKey, Model: active.Model})
		if err != nil {
			return Result{Name: name, Detail: err.Error()}
		}
		client = g
	} else {
		client = llm.NewClient(llm.Config{
			APIKey:         active.APIKey,
			BaseURL:        active.BaseURL,
			Model:          active.Model,
			TimeoutSeconds: active.TimeoutSeconds,
		})
	}

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
