package ytdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ytanalyzer/internal/services"
)

// commentPageSize is the API maximum for commentThreads.list.
const commentPageSize = 100

// Video is the metadata subset returned by videos.list.
type Video struct {
	ID          string
	Title       string
	Description string
	Channel     string
	PublishedAt string
	Duration    string
}

// Comment is a top-level comment from commentThreads.list.
type Comment struct {
	ID          string
	Author      string
	Text        string
	LikeCount   int64
	PublishedAt string
}

// Client reads public video data from the YouTube Data API v3 using an API key.
type Client struct {
	service *youtube.Service
}

// New creates a client authenticated with apiKey. Extra options are appended
// (tests point the endpoint at a local server).
func New(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube api", "new client", "api key required", nil)
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{service: service}, nil
}

// Video fetches the snippet for one video id.
func (c *Client) Video(ctx context.Context, id string) (*Video, error) {
	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails"}).
		Id(id).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("videos.list", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, services.Wrap(services.ErrNotFound, "youtube api", "videos.list", "no video with id "+id, nil)
	}
	item := resp.Items[0]
	video := &Video{
		ID:          item.Id,
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Channel:     item.Snippet.ChannelTitle,
		PublishedAt: item.Snippet.PublishedAt,
	}
	if item.ContentDetails != nil {
		video.Duration = item.ContentDetails.Duration
	}
	return video, nil
}

// Comments pages through top-level comments (relevance order) until limit
// comments are collected. A video with comments disabled yields no comments.
func (c *Client) Comments(ctx context.Context, videoID string, limit int) ([]Comment, error) {
	if limit <= 0 {
		return nil, nil
	}
	var (
		comments  []Comment
		pageToken string
	)
	for len(comments) < limit {
		call := c.service.CommentThreads.List([]string{"snippet"}).
			VideoId(videoID).
			Order("relevance").
			TextFormat("plainText").
			MaxResults(int64(min(commentPageSize, limit-len(comments)))).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			if commentsDisabled(err) {
				return comments, nil
			}
			return nil, classify("commentThreads.list", err)
		}
		for _, thread := range resp.Items {
			if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
				continue
			}
			snippet := thread.Snippet.TopLevelComment.Snippet
			text := snippet.TextOriginal
			if text == "" {
				text = snippet.TextDisplay
			}
			comments = append(comments, Comment{
				ID:          thread.Snippet.TopLevelComment.Id,
				Author:      snippet.AuthorDisplayName,
				Text:        text,
				LikeCount:   snippet.LikeCount,
				PublishedAt: snippet.PublishedAt,
			})
		}
		if resp.NextPageToken == "" || len(resp.Items) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}
	if len(comments) > limit {
		comments = comments[:limit]
	}
	return comments, nil
}

func commentsDisabled(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusForbidden {
		return false
	}
	for _, item := range apiErr.Errors {
		if item.Reason == "commentsDisabled" {
			return true
		}
	}
	return false
}

func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, "youtube api", op, "request rejected; check youtube.api_key", err)
		case http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, "youtube api", op, "not found", err)
		}
	}
	return services.Wrap(services.ErrTransient, "youtube api", op, "request failed", err)
}
