package relay

import (
	"context"
	"io"
)

const (
	// MaxFileSize is the largest payload accepted for a release asset.
	MaxFileSize = int64(4 * 1024 * 1024 * 1024)

	// UploadChunkSize is the slice size the spool is re-read in during the upload phase.
	UploadChunkSize = 1024 * 1024

	// UnknownSize marks a source that did not declare its length.
	UnknownSize = int64(-1)
)

// ChunkWriter receives a source's payload in order.
type ChunkWriter interface {
	// SetTotal records the payload length once the source knows it (UnknownSize if never).
	SetTotal(total int64) error
	// WriteChunk appends one chunk. Returning an error aborts the stream.
	WriteChunk(chunk []byte) error
}

// Source is where the relayed bytes come from: a chat attachment or a remote URL.
type Source interface {
	// Origin names the source in status messages, e.g. "Telegram" or "URL".
	Origin() string
	// Stream delivers the payload chunk by chunk, sequentially, until EOF or an error.
	Stream(ctx context.Context, w ChunkWriter) error
}

// Uploader is the release-asset sink. It replaces any same-named asset and returns the
// public download URL of the new one.
type Uploader interface {
	UploadAsset(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
}

// StatusMessage is a chat message the relay keeps editing while a transfer runs.
type StatusMessage interface {
	Edit(ctx context.Context, text string) error
}

// Responder answers the requester of an inbound message.
type Responder interface {
	Reply(ctx context.Context, text string) error
	ReplyStatus(ctx context.Context, text string) (StatusMessage, error)
}

// Document is a file attached to an inbound chat message.
type Document struct {
	Filename string
	Size     int64
	Source   Source
}

// Inbound is one message received from a requester.
type Inbound struct {
	RequesterID int64
	Text        string
	Document    *Document
	Responder   Responder
}

// TransferRequest describes a single relay job.
type TransferRequest struct {
	RequesterID  int64
	Source       Source
	Filename     string
	DeclaredSize int64
	Status       StatusMessage
}

// Result is what a successful relay hands back to the requester.
type Result struct {
	Filename    string
	Size        int64
	ContentType string
	URL         string
}
