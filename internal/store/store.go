package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"ytanalyzer/internal/config"
	"ytanalyzer/internal/extractor"
)

// ErrLocked reports that another ytanalyzer process holds the database.
var ErrLocked = errors.New("video store is locked by another process")

// Video is one processed video.
type Video struct {
	ID                  string
	URL                 string
	Title               string
	Description         string
	TopComments         []extractor.Comment
	TranscriptFile      string
	AnalysisFile        string
	InfoQualityScore    int
	ViewerInterestScore int
	ProcessedAt         time.Time
}

// Store persists processed videos in SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open connects to <data_dir>/videos.db, creating the schema on first use,
// and takes an exclusive lock for the lifetime of the store.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	lock := flock.New(filepath.Join(filepath.Dir(dbPath), "videos.db.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lock.Path())
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection and releases the lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release store lock: %w", unlockErr)
		}
	}
	return err
}

// Upsert inserts the video or updates the existing row with the same id in a
// single transaction. ProcessedAt defaults to now.
func (s *Store) Upsert(ctx context.Context, video *Video) error {
	if video == nil {
		return errors.New("video is nil")
	}
	if strings.TrimSpace(video.ID) == "" {
		return errors.New("video id required")
	}
	if strings.TrimSpace(video.URL) == "" {
		return errors.New("video url required")
	}
	if video.ProcessedAt.IsZero() {
		video.ProcessedAt = time.Now().UTC()
	}
	comments, err := json.Marshal(commentsOrEmpty(video.TopComments))
	if err != nil {
		return fmt.Errorf("marshal comments: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM videos WHERE id = ?`, video.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("lookup video %s: %w", video.ID, err)
	}

	args := []any{
		video.URL,
		nullableString(video.Title),
		nullableString(video.Description),
		string(comments),
		nullableString(video.TranscriptFile),
		nullableString(video.AnalysisFile),
		nullableScore(video.InfoQualityScore),
		nullableScore(video.ViewerInterestScore),
		video.ProcessedAt.UTC().Format(time.RFC3339Nano),
		video.ID,
	}
	if exists > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE videos
             SET url = ?, title = ?, description = ?, top_comments_json = ?,
                 transcript_file = ?, analysis_file = ?, info_quality_score = ?,
                 viewer_interest_score = ?, processed_at = ?
             WHERE id = ?`,
			args...,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO videos (
                url, title, description, top_comments_json, transcript_file,
                analysis_file, info_quality_score, viewer_interest_score, processed_at, id
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			args...,
		)
	}
	if err != nil {
		return fmt.Errorf("write video %s: %w", video.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit video %s: %w", video.ID, err)
	}
	return nil
}

// Exists reports whether a video id has been processed.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM videos WHERE id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("check video %s: %w", id, err)
	}
	return count > 0, nil
}

// Get fetches one video, returning nil when it is absent.
func (s *Store) Get(ctx context.Context, id string) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", id, err)
	}
	return video, nil
}

// List returns every video, most recently processed first.
func (s *Store) List(ctx context.Context) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY processed_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// Count returns the number of stored videos.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM videos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}
