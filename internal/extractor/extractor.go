package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/logging"
	"ytanalyzer/internal/services"
	"ytanalyzer/internal/services/ytdata"
	"ytanalyzer/internal/services/ytdlp"
	"ytanalyzer/internal/transcript"
)

// Comment is a viewer comment kept with the video record.
type Comment struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Likes  int64  `json:"likes"`
}

// Metadata describes one video.
type Metadata struct {
	ID          string
	URL         string
	Title       string
	Description string
	Channel     string
	Comments    []Comment
}

// YtDlp is the subset of the yt-dlp client the extractor uses.
type YtDlp interface {
	VideoID(ctx context.Context, url string) (string, error)
	Info(ctx context.Context, url string, maxComments int) (*ytdlp.Info, error)
	DownloadCaptions(ctx context.Context, url, destDir string, langs []string) (string, error)
}

// DataAPI is the subset of the YouTube Data API client the extractor uses.
type DataAPI interface {
	Video(ctx context.Context, id string) (*ytdata.Video, error)
	Comments(ctx context.Context, videoID string, limit int) ([]ytdata.Comment, error)
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithYtDlp replaces the yt-dlp client.
func WithYtDlp(client YtDlp) Option {
	return func(e *Extractor) { e.ytdlp = client }
}

// WithDataAPI sets the Data API client used for metadata.
func WithDataAPI(client DataAPI) Option {
	return func(e *Extractor) { e.api = client }
}

// Extractor fetches video metadata and platform transcripts.
type Extractor struct {
	ytdlp       YtDlp
	api         DataAPI
	topComments int
	maxComments int
	languages   []string
	scratchRoot string
	logger      *slog.Logger
}

// New builds an extractor from configuration. The Data API client is created
// only when youtube.api_key is set and no client was injected.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Extractor, error) {
	if cfg == nil {
		return nil, errors.New("extractor: config required")
	}
	e := &Extractor{
		topComments: cfg.YouTube.TopComments,
		maxComments: cfg.YouTube.MaxComments,
		languages:   cfg.YouTube.TranscriptLanguages,
		scratchRoot: cfg.Paths.TempAudioDir,
		logger:      logging.NewComponentLogger(logger, "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ytdlp == nil {
		client, err := ytdlp.New(cfg.YouTube.YtDlpBinary, cfg.YouTube.TimeoutSeconds)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "extractor", "yt-dlp", "create client", err)
		}
		e.ytdlp = client
	}
	if e.api == nil && cfg.YouTube.APIKey != "" {
		client, err := ytdata.New(ctx, cfg.YouTube.APIKey)
		if err != nil {
			return nil, err
		}
		e.api = client
	}
	return e, nil
}

// VideoID resolves url to its video id, parsing locally when possible.
func (e *Extractor) VideoID(ctx context.Context, url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", services.Wrap(services.ErrValidation, "extractor", "video id", "url is empty", nil)
	}
	if id, ok := ParseVideoID(url); ok {
		return id, nil
	}
	id, err := e.ytdlp.VideoID(ctx, url)
	if err != nil {
		return "", err
	}
	e.logger.Debug("video id resolved by yt-dlp", logging.String(logging.FieldVideoID, id))
	return id, nil
}

// Metadata returns title, description and the top comments by likes.
func (e *Extractor) Metadata(ctx context.Context, url string) (*Metadata, error) {
	id, err := e.VideoID(ctx, url)
	if err != nil {
		return nil, err
	}
	if e.api != nil {
		return e.metadataFromAPI(ctx, id, url)
	}
	return e.metadataFromYtDlp(ctx, id, url)
}

func (e *Extractor) metadataFromAPI(ctx context.Context, id, url string) (*Metadata, error) {
	video, err := e.api.Video(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := e.api.Comments(ctx, id, e.maxComments)
	if err != nil {
		return nil, err
	}
	comments := make([]Comment, 0, len(raw))
	for _, c := range raw {
		comments = append(comments, Comment{Author: c.Author, Text: c.Text, Likes: c.LikeCount})
	}
	meta := &Metadata{
		ID:          id,
		URL:         url,
		Title:       video.Title,
		Description: video.Description,
		Channel:     video.Channel,
		Comments:    TopComments(comments, e.topComments),
	}
	e.logger.Info("metadata fetched",
		logging.String("source", "youtube_api"),
		logging.Int("comments", len(meta.Comments)),
	)
	return meta, nil
}

func (e *Extractor) metadataFromYtDlp(ctx context.Context, id, url string) (*Metadata, error) {
	info, err := e.ytdlp.Info(ctx, url, e.maxComments)
	if err != nil {
		return nil, err
	}
	top := info.TopComments(e.topComments)
	comments := make([]Comment, 0, len(top))
	for _, c := range top {
		comments = append(comments, Comment{Author: c.Author, Text: c.Text, Likes: c.LikeCount})
	}
	channel := info.Channel
	if channel == "" {
		channel = info.Uploader
	}
	if info.ID != "" {
		id = info.ID
	}
	meta := &Metadata{
		ID:          id,
		URL:         url,
		Title:       info.Title,
		Description: info.Description,
		Channel:     channel,
		Comments:    comments,
	}
	e.logger.Info("metadata fetched",
		logging.String("source", "yt-dlp"),
		logging.Int("comments", len(meta.Comments)),
	)
	return meta, nil
}

// TopComments returns at most n comments with text, ordered by likes
// (highest first, ties in original order).
func TopComments(comments []Comment, n int) []Comment {
	if n <= 0 {
		return nil
	}
	kept := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if strings.TrimSpace(c.Text) != "" {
			kept = append(kept, c)
		}
	}
	sort.SliceStable(kept, func(a, b int) bool { return kept[a].Likes > kept[b].Likes })
	if len(kept) > n {
		kept = kept[:n]
	}
	return kept
}

// PlatformTranscript downloads and parses the platform captions. Any failure
// is logged as a warning and yields an empty transcript with a nil error.
func (e *Extractor) PlatformTranscript(ctx context.Context, url string) ([]transcript.Segment, error) {
	segments, err := e.platformTranscript(ctx, url)
	if err != nil {
		hint := services.ErrorHint(err)
		if errors.Is(err, ytdlp.ErrNoCaptions) {
			hint = "video has no captions; enable Whisper to transcribe the audio"
		}
		logging.WarnWithContext(e.logger, "platform transcript unavailable", "platform_transcript_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
			logging.String(logging.FieldImpact, "continuing without the platform transcript"),
		)
		return []transcript.Segment{}, nil
	}
	e.logger.Info("platform transcript fetched", logging.Int("segments", len(segments)))
	return segments, nil
}

func (e *Extractor) platformTranscript(ctx context.Context, url string) ([]transcript.Segment, error) {
	if e.scratchRoot != "" {
		if err := os.MkdirAll(e.scratchRoot, 0o755); err != nil {
			return nil, fmt.Errorf("create scratch root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(e.scratchRoot, "captions-")
	if err != nil {
		return nil, fmt.Errorf("create caption dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Debug("caption dir cleanup failed", logging.Error(err))
		}
	}()

	path, err := e.ytdlp.DownloadCaptions(ctx, url, dir, e.languages)
	if err != nil {
		return nil, err
	}
	segments, err := ytdlp.LoadCaptions(path)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, ytdlp.ErrNoCaptions
	}
	return segments, nil
}
