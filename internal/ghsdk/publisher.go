package ghsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ghrelay/ghrelay/internal/relayerr"
	"github.com/samber/lo"
)

// Publisher uploads relayed payloads as assets of one fixed release.
type Publisher struct {
	releases *ReleasesAPI
	repo     Repo
	tag      string
	log      *slog.Logger
}

func NewPublisher(gh *GitHub, repo Repo, tag string) *Publisher {
	return &Publisher{
		releases: gh.Releases,
		repo:     repo,
		tag:      tag,
		log:      slog.Default().With("component", "publisher", "repo", repo.String(), "tag", tag),
	}
}

// UploadAsset resolves the release, deletes any same-named asset and uploads body in its place.
// Between the delete and the upload the asset is absent. Returns the asset's browser_download_url.
func (p *Publisher) UploadAsset(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	release, err := p.releases.GetByTag(ctx, p.repo, p.tag)
	if err != nil {
		if errors.Is(err, ErrReleaseNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", relayerr.ErrUploadFailed, err)
	}

	p.replaceExisting(ctx, release, name)

	asset, err := p.releases.UploadAsset(ctx, release, name, contentType, body, size)
	if err != nil {
		return "", fmt.Errorf("%w: %w", relayerr.ErrUploadFailed, err)
	}

	p.log.Info("asset uploaded", "asset", asset.Name, "id", asset.ID, "contentType", asset.ContentType, "url", asset.BrowserDownloadURL)
	return asset.BrowserDownloadURL, nil
}

// replaceExisting deletes the asset called name, if the release has one. Failures are logged
// and the upload proceeds; GitHub then answers the upload with 422.
func (p *Publisher) replaceExisting(ctx context.Context, release *Release, name string) {
	assets, err := p.releases.ListAssets(ctx, p.repo, release.ID)
	if err != nil {
		p.log.Warn("list assets failed", "release", release.ID, "error", err)
		return
	}

	existing, found := lo.Find(assets, func(a *Asset) bool {
		return a.Name == name
	})
	if !found {
		return
	}

	if err := p.releases.DeleteAsset(ctx, p.repo, existing.ID); err != nil {
		p.log.Warn("delete existing asset failed", "asset", name, "id", existing.ID, "error", err)
		return
	}
	p.log.Info("deleted existing asset", "asset", name, "id", existing.ID)
}
