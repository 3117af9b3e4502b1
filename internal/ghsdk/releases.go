package ghsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ghrelay/ghrelay/internal/version"
	"github.com/imroc/req/v3"
)

const (
	v3ReleaseByTag  = "/repos/{owner}/{repo}/releases/tags/{tag}"
	v3ReleaseAssets = "/repos/{owner}/{repo}/releases/{release_id}/assets"
	v3ReleaseAsset  = "/repos/{owner}/{repo}/releases/assets/{asset_id}"

	assetsPerPage = "100"
)

// Repo identifies a repository as owner/name.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo splits "owner/name".
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

func (r Repo) pathParams() map[string]string {
	return map[string]string{"owner": r.Owner, "repo": r.Name}
}

type ReleasesAPI struct {
	client *req.Client
	token  string
}

func newReleasesAPI(client *req.Client, token string) *ReleasesAPI {
	return &ReleasesAPI{
		client: client,
		token:  token,
	}
}

// GetByTag looks up the release published under tag.
func (r *ReleasesAPI) GetByTag(ctx context.Context, repo Repo, tag string) (release *Release, err error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParams(repo.pathParams()).
		SetPathParam("tag", tag).
		SetSuccessResult(&release).
		Get(v3ReleaseByTag)

	if err := handleAPIError(resp, err, "get release"); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s@%s", ErrReleaseNotFound, repo, tag)
		}
		return nil, err
	}

	return release, nil
}

// ListAssets returns the first page (up to 100) of the release's assets.
func (r *ReleasesAPI) ListAssets(ctx context.Context, repo Repo, releaseID int64) (assets []*Asset, err error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParams(repo.pathParams()).
		SetPathParam("release_id", strconv.FormatInt(releaseID, 10)).
		SetQueryParam("per_page", assetsPerPage).
		SetSuccessResult(&assets).
		Get(v3ReleaseAssets)

	if err := handleAPIError(resp, err, "list assets"); err != nil {
		return nil, err
	}

	return assets, nil
}

// DeleteAsset removes a release asset by ID.
func (r *ReleasesAPI) DeleteAsset(ctx context.Context, repo Repo, assetID int64) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetPathParams(repo.pathParams()).
		SetPathParam("asset_id", strconv.FormatInt(assetID, 10)).
		Delete(v3ReleaseAsset)

	return handleAPIError(resp, err, "delete asset")
}

// UploadAsset streams body to the release's upload endpoint as an asset called name.
// An empty contentType uploads as application/octet-stream.
func (r *ReleasesAPI) UploadAsset(ctx context.Context, release *Release, name, contentType string, body io.Reader, size int64) (*Asset, error) {
	/*
		not using req's request builder here:
		- SetBody() with a plain io.Reader does not carry a Content-Length, which the upload endpoint requires
		- the body may be gigabytes and must be streamed, never buffered
		the underlying *http.Client still comes from req so transport settings are shared
	*/

	target, err := uploadEndpoint(release.UploadURL, name)
	if err != nil {
		return nil, err
	}

	// a nil body makes net/http send "Content-Length: 0"; http.NoBody would go out chunked
	if size == 0 {
		body = nil
	}
	if contentType == "" {
		contentType = contentTypeOctetStream
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.ContentLength = size // the upload endpoint rejects chunked bodies
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+r.token)
	httpReq.Header.Set(HeaderAccept, AcceptGitHubJSON)
	httpReq.Header.Set(HeaderAPIVersion, APIVersion)
	httpReq.Header.Set(HeaderUserAgent, version.UserAgent())

	resp, err := r.client.GetClient().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upload asset: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upload asset: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("upload asset: %w", newAPIError(resp.StatusCode, respBody))
	}

	var asset Asset
	if err := jsonUnmarshal(respBody, &asset); err != nil {
		return nil, fmt.Errorf("upload asset: decode response: %w", err)
	}
	return &asset, nil
}

// uploadEndpoint expands the release's hypermedia upload_url, e.g.
// https://uploads.github.com/repos/o/r/releases/1/assets{?name,label}
func uploadEndpoint(uploadURL, name string) (string, error) {
	if i := strings.Index(uploadURL, "{"); i >= 0 {
		uploadURL = uploadURL[:i]
	}

	u, err := url.Parse(uploadURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid upload url %q", uploadURL)
	}

	q := u.Query()
	q.Set("name", name)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
