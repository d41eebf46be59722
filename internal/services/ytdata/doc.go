// Package ytdata reads video metadata and top-level comments from the YouTube
// Data API v3. It is used instead of yt-dlp's info dump when youtube.api_key
// is configured, which is faster for comment-heavy videos.
package ytdata
