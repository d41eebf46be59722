// Package ytdlp wraps the yt-dlp command line tool.
//
// It resolves video ids, dumps info JSON with top-level comments, downloads
// json3 captions (manual preferred over auto-generated), and downloads audio
// while streaming byte progress through a custom progress template. Commands
// run through services.Executor so tests can replay canned output.
package ytdlp
