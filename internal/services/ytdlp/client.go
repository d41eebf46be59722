package ytdlp

import (
	"context"
	"errors"
	"strings"
	"time"

	"ytanalyzer/internal/services"
)

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec services.Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    services.Executor
}

// New constructs a yt-dlp client. timeoutSeconds bounds metadata and caption
// calls; audio downloads are bounded only by the caller's context.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    services.CommandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// VideoID asks yt-dlp to resolve the canonical id for url.
func (c *Client) VideoID(ctx context.Context, url string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.exec.Output(ctx, c.binary, []string{
		"--print", "id",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		url,
	})
	if err != nil {
		return "", classify("resolve id", err)
	}
	id := strings.TrimSpace(firstLine(string(out)))
	if id == "" {
		return "", services.Wrap(services.ErrNotFound, "metadata", "yt-dlp", "empty video id", nil)
	}
	return id, nil
}

// classify tags yt-dlp failures with the matching service marker.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, "yt-dlp", op, "timed out", err)
	case errors.Is(err, context.Canceled):
		return err
	case services.IsNotInstalled(err):
		return services.Wrap(services.ErrExternalTool, "yt-dlp", op, "binary not found", err)
	}
	var cmdErr *services.CommandError
	if errors.As(err, &cmdErr) {
		lower := strings.ToLower(cmdErr.Stderr)
		for _, marker := range []string{"video unavailable", "private video", "is not a valid url", "unsupported url", "does not exist"} {
			if strings.Contains(lower, marker) {
				return services.Wrap(services.ErrNotFound, "yt-dlp", op, marker, err)
			}
		}
	}
	return services.Wrap(services.ErrExternalTool, "yt-dlp", op, "command failed", err)
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}
