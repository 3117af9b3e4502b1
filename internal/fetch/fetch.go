// Package fetch downloads remote files for the relay over plain HTTP GET.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ghrelay/ghrelay/internal/relay"
	"github.com/ghrelay/ghrelay/internal/version"
	"github.com/imroc/req/v3"
)

const (
	// ReadSize is the chunk size remote bodies are read in.
	ReadSize = 8 * 1024

	dialTimeout = 30 * time.Second
)

// Client downloads URLs sent by requesters.
type Client struct {
	client *req.Client
}

// dialFunc opens the TCP connection for a request.
type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func New() *Client {
	return newClient((&net.Dialer{Timeout: dialTimeout}).DialContext)
}

func newClient(dial dialFunc) *Client {
	client := req.C().
		SetUserAgent(version.UserAgent()).
		SetTimeout(0). // bodies can be up to 4 GiB; cancellation comes from ctx
		SetDial(dial).
		DisableAutoReadResponse()

	return &Client{client: client}
}

// Source returns a relay source reading rawURL.
func (c *Client) Source(rawURL string) relay.Source {
	return &Source{client: c.client, url: rawURL}
}

// Source is a single remote file.
type Source struct {
	client *req.Client
	url    string
}

func (s *Source) Origin() string {
	return relay.OriginURL
}

// Stream GETs the URL and forwards the body in ReadSize chunks. Only 200 is accepted.
// The Content-Length, when present, is announced before the first chunk.
func (s *Source) Stream(ctx context.Context, w relay.ChunkWriter) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.url)
	if err != nil {
		return fmt.Errorf("http request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total < 0 {
		total = relay.UnknownSize
	}
	if err := w.SetTotal(total); err != nil {
		return err
	}

	buf := make([]byte, ReadSize)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if werr := w.WriteChunk(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
	}
}
