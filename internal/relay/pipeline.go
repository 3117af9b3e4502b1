package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/ghrelay/ghrelay/internal/relayerr"
	"github.com/google/uuid"
)

const sniffSize = 512

// PipelineConfig tunes a Pipeline. Zero values pick the defaults.
type PipelineConfig struct {
	SpoolDir         string
	SpoolMemoryLimit int64
	Now              func() time.Time
}

// Pipeline relays one payload from a Source to the release Uploader: the whole payload is
// downloaded into a Spool first, then uploaded in UploadChunkSize slices. Both phases push
// rate-limited progress into the request's status message.
type Pipeline struct {
	sessions *Sessions
	uploader Uploader
	spoolDir string
	memLimit int64
	now      func() time.Time
	log      *slog.Logger
}

func NewPipeline(sessions *Sessions, uploader Uploader, cfg PipelineConfig) *Pipeline {
	if cfg.SpoolMemoryLimit <= 0 {
		cfg.SpoolMemoryLimit = DefaultSpoolMemoryLimit
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Pipeline{
		sessions: sessions,
		uploader: uploader,
		spoolDir: cfg.SpoolDir,
		memLimit: cfg.SpoolMemoryLimit,
		now:      cfg.Now,
		log:      slog.Default().With("component", "pipeline"),
	}
}

// ValidateSize rejects payloads whose known size exceeds MaxFileSize. Unknown sizes pass.
func ValidateSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %s exceeds the %s limit", relayerr.ErrFileTooLarge, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(MaxFileSize)))
	}
	return nil
}

// Relay runs the transfer described by req. The requester's session is released on every
// exit path, including validation failures and cancellation.
func (p *Pipeline) Relay(ctx context.Context, req *TransferRequest) (*Result, error) {
	defer p.sessions.Release(req.RequesterID)

	if err := ValidateSize(req.DeclaredSize); err != nil {
		return nil, err
	}

	log := p.log.With(
		"transfer", uuid.NewString(),
		"requester", req.RequesterID,
		"filename", req.Filename,
		"origin", req.Source.Origin(),
	)
	start := p.now()

	spool := NewSpool(p.spoolDir, p.memLimit)
	defer func() {
		if err := spool.Close(); err != nil {
			log.Warn("spool cleanup", "error", err)
		}
	}()

	log.Info("download start", "declaredSize", req.DeclaredSize)
	mime, err := p.download(ctx, req, spool, log)
	if err != nil {
		log.Error("download failed", "error", err)
		return nil, err
	}

	size := spool.Size()
	log.Info("download complete", "size", humanize.IBytes(uint64(size)), "mime", mime, "onDisk", spool.OnDisk())

	url, err := p.upload(ctx, req, spool, mime, log)
	if err != nil {
		log.Error("upload failed", "error", err)
		return nil, err
	}

	log.Info("relay complete", "url", url, "size", humanize.IBytes(uint64(size)), "took", p.now().Sub(start))
	return &Result{
		Filename:    req.Filename,
		Size:        size,
		ContentType: mime,
		URL:         url,
	}, nil
}

// download streams the source into spool and returns the sniffed MIME type of the payload.
func (p *Pipeline) download(ctx context.Context, req *TransferRequest, spool *Spool, log *slog.Logger) (string, error) {
	w := &downloadWriter{
		ctx:      ctx,
		pipeline: p,
		log:      log,
		req:      req,
		spool:    spool,
		title:    DownloadTitle(req.Source.Origin()),
		total:    req.DeclaredSize,
		progress: NewProgress(p.now),
	}

	if err := req.Source.Stream(ctx, w); err != nil {
		if errors.Is(err, relayerr.ErrFileTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", relayerr.ErrDownloadFailed, err)
	}

	// empty payloads never hit the chunk path, so render their single 100% report here
	if w.moved == 0 {
		p.report(ctx, req, log, Render(w.title, req.Filename, 0, max(w.total, 0)))
	}

	return mimetype.Detect(w.head).String(), nil
}

// upload streams the spool to the uploader, tagging the asset with the sniffed contentType.
func (p *Pipeline) upload(ctx context.Context, req *TransferRequest, spool *Spool, contentType string, log *slog.Logger) (string, error) {
	p.sessions.SetStatus(req.RequesterID, StatusStartingUpload)
	p.report(ctx, req, log, UploadStartText)

	src, err := spool.Reader()
	if err != nil {
		return "", fmt.Errorf("%w: %w", relayerr.ErrUploadFailed, err)
	}

	size := spool.Size()
	progress := NewProgress(p.now)
	started := false
	body := newChunkReader(src, UploadChunkSize, func(sent int64) {
		if !started {
			started = true
			p.sessions.SetStatus(req.RequesterID, StatusUploading)
		}
		if progress.ShouldReport(sent, size) {
			p.report(ctx, req, log, Render(UploadTitle, req.Filename, sent, size))
		}
	})

	if size == 0 {
		p.report(ctx, req, log, Render(UploadTitle, req.Filename, 0, 0))
	}

	url, err := p.uploader.UploadAsset(ctx, req.Filename, contentType, body, size)
	if err != nil {
		if errors.Is(err, relayerr.ErrReleaseNotFound) || errors.Is(err, relayerr.ErrUploadFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", relayerr.ErrUploadFailed, err)
	}
	return url, nil
}

// report pushes text to the status message. Edit failures are logged, never fatal.
func (p *Pipeline) report(ctx context.Context, req *TransferRequest, log *slog.Logger, text string) {
	if req.Status == nil {
		return
	}
	if err := req.Status.Edit(ctx, text); err != nil {
		log.Warn("status update failed", "error", err)
	}
}

// downloadWriter appends source chunks to the spool and drives download progress.
type downloadWriter struct {
	ctx      context.Context
	pipeline *Pipeline
	log      *slog.Logger
	req      *TransferRequest
	spool    *Spool
	title    string
	total    int64
	moved    int64
	head     []byte
	progress *Progress
}

func (w *downloadWriter) SetTotal(total int64) error {
	if err := ValidateSize(total); err != nil {
		return err
	}
	w.total = total
	return nil
}

func (w *downloadWriter) WriteChunk(chunk []byte) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if len(chunk) == 0 {
		return nil
	}

	if w.moved+int64(len(chunk)) > MaxFileSize {
		return fmt.Errorf("%w: payload grew past %s", relayerr.ErrFileTooLarge, humanize.IBytes(uint64(MaxFileSize)))
	}

	if _, err := w.spool.Write(chunk); err != nil {
		return err
	}
	if len(w.head) < sniffSize {
		w.head = append(w.head, chunk[:min(len(chunk), sniffSize-len(w.head))]...)
	}
	if w.moved == 0 {
		w.pipeline.sessions.SetStatus(w.req.RequesterID, StatusDownloading)
	}
	w.moved += int64(len(chunk))

	if w.progress.ShouldReport(w.moved, w.total) {
		w.pipeline.report(w.ctx, w.req, w.log, Render(w.title, w.req.Filename, w.moved, w.total))
	}
	return nil
}

// chunkReader re-slices src into fixed-size chunks and calls onChunk with the running total
// each time a chunk has been fully handed to the consumer.
type chunkReader struct {
	src     io.Reader
	buf     []byte
	pending []byte
	sent    int64
	onChunk func(sent int64)
}

func newChunkReader(src io.Reader, chunkSize int, onChunk func(sent int64)) *chunkReader {
	return &chunkReader{
		src:     src,
		buf:     make([]byte, chunkSize),
		onChunk: onChunk,
	}
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.pending) == 0 {
		n, err := io.ReadFull(r.src, r.buf)
		switch {
		case n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF):
			return 0, io.EOF
		case err != nil && err != io.ErrUnexpectedEOF:
			return 0, err
		}
		r.pending = r.buf[:n]
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	r.sent += int64(n)
	if len(r.pending) == 0 && r.onChunk != nil {
		r.onChunk(r.sent)
	}
	return n, nil
}
