package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"ytanalyzer/internal/extractor"
)

const videoColumns = "id, url, title, description, top_comments_json, transcript_file, analysis_file, info_quality_score, viewer_interest_score, processed_at"

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		id             string
		url            string
		title          sql.NullString
		description    sql.NullString
		commentsJSON   sql.NullString
		transcriptFile sql.NullString
		analysisFile   sql.NullString
		infoQuality    sql.NullInt64
		viewerInterest sql.NullInt64
		processedRaw   string
	)
	if err := scanner.Scan(
		&id,
		&url,
		&title,
		&description,
		&commentsJSON,
		&transcriptFile,
		&analysisFile,
		&infoQuality,
		&viewerInterest,
		&processedRaw,
	); err != nil {
		return nil, err
	}

	video := &Video{
		ID:                  id,
		URL:                 url,
		Title:               title.String,
		Description:         description.String,
		TranscriptFile:      transcriptFile.String,
		AnalysisFile:        analysisFile.String,
		InfoQualityScore:    int(infoQuality.Int64),
		ViewerInterestScore: int(viewerInterest.Int64),
	}
	if commentsJSON.Valid && commentsJSON.String != "" {
		if err := json.Unmarshal([]byte(commentsJSON.String), &video.TopComments); err != nil {
			return nil, fmt.Errorf("decode comments for %s: %w", id, err)
		}
	}
	if processed, err := time.Parse(time.RFC3339Nano, processedRaw); err == nil {
		video.ProcessedAt = processed
	}
	return video, nil
}

func commentsOrEmpty(comments []extractor.Comment) []extractor.Comment {
	if comments == nil {
		return []extractor.Comment{}
	}
	return comments
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// nullableScore stores zero (never a valid score) as NULL.
func nullableScore(value int) any {
	if value == 0 {
		return nil
	}
	return value
}
