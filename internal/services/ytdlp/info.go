package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"ytanalyzer/internal/services"
)

// Comment is a top-level viewer comment reported by yt-dlp.
type Comment struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	LikeCount int64  `json:"like_count"`
	Parent    string `json:"parent"`
	Timestamp int64  `json:"timestamp"`
}

// Info is the subset of the yt-dlp info JSON the pipeline uses.
type Info struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Channel     string    `json:"channel"`
	Uploader    string    `json:"uploader"`
	Duration    float64   `json:"duration"`
	WebpageURL  string    `json:"webpage_url"`
	UploadDate  string    `json:"upload_date"`
	Comments    []Comment `json:"comments"`
}

// Info dumps video metadata. When maxComments > 0, up to that many top-level
// comments are fetched as well (replies are skipped).
func (c *Client) Info(ctx context.Context, url string, maxComments int) (*Info, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
	}
	if maxComments > 0 {
		args = append(args,
			"--write-comments",
			"--extractor-args", fmt.Sprintf("youtube:comment_sort=top;max_comments=%d,all,0,0", maxComments),
		)
	}
	args = append(args, url)

	out, err := c.exec.Output(ctx, c.binary, args)
	if err != nil {
		return nil, classify("dump info", err)
	}
	var info Info
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, services.Wrap(services.ErrValidation, "yt-dlp", "dump info", "decode info json", err)
	}
	if strings.TrimSpace(info.ID) == "" {
		return nil, services.Wrap(services.ErrValidation, "yt-dlp", "dump info", "info json missing id", nil)
	}
	return &info, nil
}

// TopComments returns at most n top-level comments ordered by like count,
// highest first. Ties keep their original order.
func (i *Info) TopComments(n int) []Comment {
	if i == nil || n <= 0 {
		return nil
	}
	roots := make([]Comment, 0, len(i.Comments))
	for _, comment := range i.Comments {
		if comment.Parent != "" && comment.Parent != "root" {
			continue
		}
		if strings.TrimSpace(comment.Text) == "" {
			continue
		}
		roots = append(roots, comment)
	}
	sort.SliceStable(roots, func(a, b int) bool {
		return roots[a].LikeCount > roots[b].LikeCount
	})
	if len(roots) > n {
		roots = roots[:n]
	}
	return roots
}
