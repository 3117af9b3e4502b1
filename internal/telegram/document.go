package telegram

import (
	"context"

	"github.com/ghrelay/ghrelay/internal/relay"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
)

// DownloadPartSize is the MTProto part size documents are fetched in.
const DownloadPartSize = 512 * 1024

// documentSource streams a Telegram document through the MTProto downloader.
type documentSource struct {
	api  *tg.Client
	loc  *tg.InputDocumentFileLocation
	size int64
}

func (s *documentSource) Origin() string {
	return relay.OriginTelegram
}

func (s *documentSource) Stream(ctx context.Context, w relay.ChunkWriter) error {
	if err := w.SetTotal(s.size); err != nil {
		return err
	}

	_, err := downloader.NewDownloader().
		WithPartSize(DownloadPartSize).
		Download(s.api, s.loc).
		Stream(ctx, chunkWriter{w})
	return err
}

// chunkWriter adapts relay.ChunkWriter to the io.Writer the downloader streams into.
type chunkWriter struct {
	w relay.ChunkWriter
}

func (c chunkWriter) Write(p []byte) (int, error) {
	if err := c.w.WriteChunk(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// documentOf extracts the document attached to msg, if any.
func documentOf(api *tg.Client, msg *tg.Message) *relay.Document {
	media, ok := msg.Media.(*tg.MessageMediaDocument)
	if !ok {
		return nil
	}
	doc, ok := media.Document.(*tg.Document)
	if !ok {
		return nil
	}

	var filename string
	for _, attr := range doc.Attributes {
		if fn, ok := attr.(*tg.DocumentAttributeFilename); ok {
			filename = fn.FileName
			break
		}
	}

	return &relay.Document{
		Filename: filename,
		Size:     doc.Size,
		Source: &documentSource{
			api: api,
			loc: &tg.InputDocumentFileLocation{
				ID:            doc.ID,
				AccessHash:    doc.AccessHash,
				FileReference: doc.FileReference,
			},
			size: doc.Size,
		},
	}
}
