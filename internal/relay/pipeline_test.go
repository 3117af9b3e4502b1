package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ghrelay/ghrelay/internal/relayerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(t *testing.T, up Uploader, clock *fakeClock) (*Pipeline, *Sessions) {
	t.Helper()
	sessions := NewSessions()
	p := NewPipeline(sessions, up, PipelineConfig{
		SpoolDir:         t.TempDir(),
		SpoolMemoryLimit: 64 * 1024,
		Now:              clock.Now,
	})
	return p, sessions
}

func TestValidateSize(t *testing.T) {
	assert.NoError(t, ValidateSize(UnknownSize))
	assert.NoError(t, ValidateSize(0))
	assert.NoError(t, ValidateSize(MaxFileSize))
	assert.ErrorIs(t, ValidateSize(MaxFileSize+1), relayerr.ErrFileTooLarge)
}

func TestPipelineRelaysDeclaredFile(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 3*UploadChunkSize+17)
	up := &fakeUploader{url: "https://example.com/releases/download/v1/app.bin"}
	clock := newFakeClock(time.Second)
	p, sessions := newTestPipeline(t, up, clock)

	status := &fakeStatus{}
	require.True(t, sessions.TryAcquire(1, "app.bin"))

	res, err := p.Relay(context.Background(), &TransferRequest{
		RequesterID:  1,
		Source:       &bytesSource{origin: OriginTelegram, data: payload, chunkSize: 512 * 1024},
		Filename:     "app.bin",
		DeclaredSize: int64(len(payload)),
		Status:       status,
	})
	require.NoError(t, err)

	assert.Equal(t, "app.bin", res.Filename)
	assert.EqualValues(t, len(payload), res.Size)
	assert.Equal(t, up.url, res.URL)
	assert.Equal(t, "application/octet-stream", res.ContentType)

	assert.Equal(t, 1, up.calls)
	assert.Equal(t, res.ContentType, up.ctype)
	assert.Equal(t, "app.bin", up.name)
	assert.EqualValues(t, len(payload), up.size)
	assert.Equal(t, payload, up.body)

	_, busy := sessions.Get(1)
	assert.False(t, busy)

	edits := status.Edits()
	require.NotEmpty(t, edits)
	assert.True(t, strings.HasPrefix(edits[0], DownloadTitle(OriginTelegram)))
	assert.Contains(t, edits, UploadStartText)
	assert.True(t, strings.HasPrefix(status.Last(), UploadTitle))
	assert.Contains(t, status.Last(), "⏳ 100.0%")
}

func TestPipelineSpillsLargePayload(t *testing.T) {
	payload := bytes.Repeat([]byte("relay"), 40*1024)
	up := &fakeUploader{url: "u"}
	p, sessions := newTestPipeline(t, up, newFakeClock(0))
	require.True(t, sessions.TryAcquire(1, "big.txt"))

	_, err := p.Relay(context.Background(), &TransferRequest{
		RequesterID:  1,
		Source:       &bytesSource{origin: OriginURL, data: payload, chunkSize: 8192},
		Filename:     "big.txt",
		DeclaredSize: UnknownSize,
	})
	require.NoError(t, err)
	assert.Equal(t, payload, up.body)
}

func TestPipelineRejectsDeclaredOversize(t *testing.T) {
	up := &fakeUploader{}
	p, sessions := newTestPipeline(t, up, newFakeClock(0))
	require.True(t, sessions.TryAcquire(1, "huge.iso"))

	status := &fakeStatus{}
	_, err := p.Relay(context.Background(), &TransferRequest{
		RequesterID:  1,
		Source:       &bytesSource{origin: OriginTelegram},
		Filename:     "huge.iso",
		DeclaredSize: MaxFileSize + 1,
		Status:       status,
	})
	require.ErrorIs(t, err, relayerr.ErrFileTooLarge)

	assert.Zero(t, up.calls)
	assert.Empty(t, status.Edits())
	assert.Zero(t, sessions.Len())
}

func TestPipelineRejectsOversizeContentLength(t *testing.T) {
	up := &fakeUploader{}
	p, sessions := newTestPipeline(t, up, newFakeClock(0))
	require.True(t, sessions.TryAcquire(1, "huge.iso"))

	_, err := p.Relay(context.Background(), &TransferRequest{
		RequesterID:  1,
		Source:       &bytesSource{origin: OriginURL, announce: true, total: MaxFileSize + 1, data: []byte("x"), chunkSize: 1},
		Filename:     "huge.iso",
		DeclaredSize: UnknownSize,
	})
	require.ErrorIs(t, err, relayerr.ErrFileTooLarge)
	assert.False(t, errors.Is(err, relayerr.ErrDownloadFailed))
	assert.Zero(t, up.calls)
	assert.Zero(t, sessions.Len())
}

func TestPipelineDownloadFailure(t *testing.T) {
	up := &fakeUploader{}
	p, sessions := newTestPipeline(t, up, newFakeClock(0))
	require.True(t, sessions.TryAcquire(1, "a.bin"))

	_, err := p.Relay(context.Background(), &TransferRequest{
		RequesterID:  1,
		Source:       &bytesSource{origin: OriginURL, data: []byte("partial"), chunkSize: 3, err: errors.New("connection reset")},
		Filename:     "a.bin",
		DeclaredSize: UnknownSize,
	})
	require.ErrorIs(t, err, relayerr.ErrDownloadFailed)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Zero(t, up.calls)
	assert.Zero(t, sessions.Len())
}

func TestPipelineUploadFailure(t *testing.T) {
	tests := []struct {
		name   string
		upErr  error
		target error
	}{
		{"release missing", fmt.Errorf("%w: v9", relayerr.ErrReleaseNotFound), relayerr.ErrReleaseNotFound},
		{"already classified", fmt.Errorf("%w: HTTP 422", relayerr.ErrUploadFailed), relayerr.ErrUploadFailed},
		{"transport", errors.New("broken pipe"), relayerr.ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &fakeUploader{err: tt.upErr}
			p, sessions := newTestPipeline(t, up, newFakeClock(0))
			require.True(t, sessions.TryAcquire(1, "a.bin"))

			_, err := p.Relay(context.Background(), &TransferRequest{
				RequesterID:  1,
				Source:       &bytesSource{origin: OriginTelegram, data: []byte("abc"), chunkSize: 3},
				Filename:     "a.bin",
				DeclaredSize: 3,
			})
			require.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.upErr.Error())
			assert.Zero(t, sessions.Len())
		})
	}
}

func TestPipelineEmptyFile(t *testing.T) {
	up := &fakeUploader{url: "u"}
	p, sessions := newTestPipeline(t, up, newFakeClock(0))
	require.True(t, sessions.TryAcquire(1, "empty.txt"))

	status := &fakeStatus{}
	res, err := p.Relay(context.Background(), &TransferRequest{
		RequesterID:  1,
		Source:       &bytesSource{origin: OriginTelegram, chunkSize: 1},
		Filename:     "empty.txt",
		DeclaredSize: 0,
		Status:       status,
	})
	require.NoError(t, err)
	assert.Zero(t, res.Size)
	assert.Equal(t, 1, up.calls)
	assert.Empty(t, up.body)

	edits := status.Edits()
	require.Len(t, edits, 3)
	assert.Contains(t, edits[0], "⏳ 100.0%")
	assert.Equal(t, UploadStartText, edits[1])
	assert.Contains(t, edits[2], "⏳ 100.0%")
}

func TestPipelineStatusTransitions(t *testing.T) {
	sessions := NewSessions()
	var seen []string
	record := func() {
		info, ok := sessions.Get(1)
		require.True(t, ok)
		seen = append(seen, info.Status)
	}

	up := &fakeUploader{url: "u", before: record}
	p := NewPipeline(sessions, up, PipelineConfig{SpoolDir: t.TempDir(), Now: newFakeClock(0).Now})
	require.True(t, sessions.TryAcquire(1, "a.bin"))

	src := &bytesSource{origin: OriginTelegram, data: []byte("abcdef"), chunkSize: 2, onChunk: func(i int) {
		record()
	}}
	_, err := p.Relay(context.Background(), &TransferRequest{RequesterID: 1, Source: src, Filename: "a.bin", DeclaredSize: 6})
	require.NoError(t, err)

	assert.Equal(t, []string{StatusStartingDownload, StatusDownloading, StatusDownloading, StatusStartingUpload}, seen)
}

func TestPipelineStatusEditFailureIsNotFatal(t *testing.T) {
	up := &fakeUploader{url: "u"}
	p, sessions := newTestPipeline(t, up, newFakeClock(time.Second))
	require.True(t, sessions.TryAcquire(1, "a.bin"))

	status := &fakeStatus{err: errors.New("message is not modified")}
	_, err := p.Relay(context.Background(), &TransferRequest{
		RequesterID:  1,
		Source:       &bytesSource{origin: OriginTelegram, data: []byte("abc"), chunkSize: 1},
		Filename:     "a.bin",
		DeclaredSize: 3,
		Status:       status,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, status.Edits())
}

func TestPipelineCancelled(t *testing.T) {
	up := &fakeUploader{}
	p, sessions := newTestPipeline(t, up, newFakeClock(0))
	require.True(t, sessions.TryAcquire(1, "a.bin"))

	ctx, cancel := context.WithCancel(context.Background())
	src := &bytesSource{origin: OriginURL, data: []byte("abcdef"), chunkSize: 2, onChunk: func(i int) {
		if i == 1 {
			cancel()
		}
	}}
	_, err := p.Relay(ctx, &TransferRequest{RequesterID: 1, Source: src, Filename: "a.bin", DeclaredSize: UnknownSize})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, up.calls)
	assert.Zero(t, sessions.Len())
}

func TestChunkReader(t *testing.T) {
	var totals []int64
	r := newChunkReader(bytes.NewReader(bytes.Repeat([]byte("x"), 10)), 4, func(sent int64) {
		totals = append(totals, sent)
	})

	out := new(bytes.Buffer)
	buf := make([]byte, 3)
	for {
		n, err := r.Read(buf)
		out.Write(buf[:n])
		if err != nil {
			break
		}
	}

	assert.Equal(t, 10, out.Len())
	assert.Equal(t, []int64{4, 8, 10}, totals)
}
