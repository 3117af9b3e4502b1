package utils

import (
	"fmt"
	"strings"
	"time"
)

// IsURL reports whether text looks like a downloadable link: an http(s) prefix and more than 8 chars.
func IsURL(text string) bool {
	if text == "" {
		return false
	}
	return (strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")) && len(text) > 8
}

// FilenameFromURL takes the last path segment of rawURL. The query string and fragment are
// dropped first, so slashes inside them never pick the segment.
// An empty segment falls back to download_<unix seconds of now>.
func FilenameFromURL(rawURL string, now time.Time) string {
	name := rawURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		name = fmt.Sprintf("download_%d", now.Unix())
	}
	return name
}
