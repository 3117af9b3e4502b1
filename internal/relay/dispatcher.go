package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ghrelay/ghrelay/internal/relayerr"
	"github.com/ghrelay/ghrelay/internal/utils"
)

const (
	CmdStart  = "/start"
	CmdHelp   = "/help"
	CmdStatus = "/status"

	unknownFilename = "unknown_file"
)

// Relayer runs a transfer. *Pipeline is the production implementation.
type Relayer interface {
	Relay(ctx context.Context, req *TransferRequest) (*Result, error)
}

// URLSourceFunc builds the byte source for a URL request.
type URLSourceFunc func(rawURL string) Source

// DispatcherConfig carries the fixed release target shown in /help.
type DispatcherConfig struct {
	Repo string
	Tag  string
	Now  func() time.Time
}

// Dispatcher classifies inbound messages and routes them to canned replies or the relay.
type Dispatcher struct {
	sessions  *Sessions
	relayer   Relayer
	urlSource URLSourceFunc
	commands  mapset.Set[string]
	repo      string
	tag       string
	now       func() time.Time
	log       *slog.Logger
}

func NewDispatcher(sessions *Sessions, relayer Relayer, urlSource URLSourceFunc, cfg DispatcherConfig) *Dispatcher {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Dispatcher{
		sessions:  sessions,
		relayer:   relayer,
		urlSource: urlSource,
		commands:  mapset.NewSet(CmdStart, CmdHelp, CmdStatus),
		repo:      cfg.Repo,
		tag:       cfg.Tag,
		now:       cfg.Now,
		log:       slog.Default().With("component", "dispatcher"),
	}
}

// Handle processes one inbound message. Commands are answered first, even mid-transfer.
// Everything else is subject to the busy check, then routed as a file, a URL, or help text.
// The returned error describes how the message was resolved; it is already reported to the
// requester and is meant for logging only.
func (d *Dispatcher) Handle(ctx context.Context, in *Inbound) error {
	text := strings.TrimSpace(in.Text)

	if strings.HasPrefix(text, "/") {
		return d.handleCommand(ctx, in, text)
	}

	if _, busy := d.sessions.Get(in.RequesterID); busy {
		d.reply(ctx, in, BusyText)
		return relayerr.ErrAlreadyBusy
	}

	switch {
	case in.Document != nil:
		return d.relayDocument(ctx, in)
	case utils.IsURL(text):
		return d.relayURL(ctx, in, text)
	case text != "":
		d.reply(ctx, in, InvalidInputText)
		return relayerr.ErrUnrecognizedInput
	}

	// stickers, photos and other content without a document
	return nil
}

func (d *Dispatcher) handleCommand(ctx context.Context, in *Inbound, text string) error {
	cmd := strings.Fields(text)[0]
	// commands in groups arrive as /cmd@botname
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	cmd = strings.ToLower(cmd)

	if !d.commands.Contains(cmd) {
		return nil
	}

	switch cmd {
	case CmdStart:
		d.reply(ctx, in, StartText)
	case CmdHelp:
		d.reply(ctx, in, HelpText(d.repo, d.tag))
	case CmdStatus:
		if info, ok := d.sessions.Get(in.RequesterID); ok {
			d.reply(ctx, in, StatusText(info))
		} else {
			d.reply(ctx, in, NoUploadText)
		}
	}
	return nil
}

func (d *Dispatcher) relayDocument(ctx context.Context, in *Inbound) error {
	doc := in.Document

	filename := doc.Filename
	if filename == "" {
		filename = unknownFilename
	}

	d.log.Info("receiving file", "requester", in.RequesterID, "filename", filename, "size", doc.Size)
	if err := ValidateSize(doc.Size); err != nil {
		d.reply(ctx, in, TooLargeText)
		return err
	}

	return d.relay(ctx, in, &TransferRequest{
		RequesterID:  in.RequesterID,
		Source:       doc.Source,
		Filename:     filename,
		DeclaredSize: doc.Size,
	})
}

func (d *Dispatcher) relayURL(ctx context.Context, in *Inbound, rawURL string) error {
	filename := utils.FilenameFromURL(rawURL, d.now())
	d.log.Info("downloading from url", "requester", in.RequesterID, "url", rawURL, "filename", filename)

	return d.relay(ctx, in, &TransferRequest{
		RequesterID:  in.RequesterID,
		Source:       d.urlSource(rawURL),
		Filename:     filename,
		DeclaredSize: UnknownSize,
	})
}

func (d *Dispatcher) relay(ctx context.Context, in *Inbound, req *TransferRequest) error {
	if !d.sessions.TryAcquire(req.RequesterID, req.Filename) {
		d.reply(ctx, in, BusyText)
		return relayerr.ErrAlreadyBusy
	}

	status, err := in.Responder.ReplyStatus(ctx, DownloadStartText(req.Source.Origin()))
	if err != nil {
		d.sessions.Release(req.RequesterID)
		return fmt.Errorf("send status message: %w", err)
	}
	req.Status = status

	res, err := d.relayer.Relay(ctx, req)

	// the final verdict must reach the requester even when shutdown cancelled the transfer
	finalCtx := context.WithoutCancel(ctx)
	if err != nil {
		d.edit(finalCtx, status, FailureText(err))
		return err
	}

	d.edit(finalCtx, status, SuccessText(res))
	return nil
}

func (d *Dispatcher) reply(ctx context.Context, in *Inbound, text string) {
	if err := in.Responder.Reply(ctx, text); err != nil {
		d.log.Warn("reply failed", "requester", in.RequesterID, "error", err)
	}
}

func (d *Dispatcher) edit(ctx context.Context, status StatusMessage, text string) {
	if err := status.Edit(ctx, text); err != nil {
		d.log.Warn("status edit failed", "error", err)
	}
}
