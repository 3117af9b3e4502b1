package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.zip"))
	assert.True(t, IsURL("http://x.io"))
	assert.False(t, IsURL("https://"), "scheme only is too short")
	assert.False(t, IsURL("http://a"), "8 chars is not enough")
	assert.False(t, IsURL("ftp://example.com/a.zip"))
	assert.False(t, IsURL("hello there"))
	assert.False(t, IsURL(""))
}

func TestFilenameFromURL(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "https://example.com/files/report.pdf", "report.pdf"},
		{"query stripped", "https://example.com/archive.tar.gz?token=abc", "archive.tar.gz"},
		{"fragment stripped", "https://example.com/a.bin#part", "a.bin"},
		{"trailing slash", "https://example.com/", "download_1700000000"},
		{"only query", "https://example.com/?x=1", "download_1700000000"},
		{"slash in query", "https://example.com/f.zip?next=/a/b", "f.zip"},
		{"slash in fragment", "https://example.com/dl/tool.tgz#sec/2", "tool.tgz"},
		{"query only after slash", "https://example.com/?redirect=/x.bin", "download_1700000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameFromURL(tt.url, now))
		})
	}
}

func TestFilenameFromURL_SyntheticPattern(t *testing.T) {
	name := FilenameFromURL("https://example.com/", time.Now())
	assert.Regexp(t, regexp.MustCompile(`^download_\d+$`), name)
}
