// Package extractor resolves a YouTube URL into the inputs the analysis
// needs: the video id, title/description/top comments, and the platform
// (caption) transcript.
//
// Metadata comes from the YouTube Data API when an API key is configured and
// from yt-dlp otherwise. Platform transcript failures never abort a run; they
// are logged and an empty transcript is returned.
package extractor
