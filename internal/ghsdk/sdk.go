package ghsdk

import (
	"strings"

	"github.com/ghrelay/ghrelay/internal/version"
	"github.com/imroc/req/v3"
)

// GitHub is a minimal client for the GitHub REST API
type GitHub struct {
	client   *req.Client
	baseURL  string
	Releases *ReleasesAPI
}

// New creates a GitHub client authenticated with token.
// Requests are never retried: a failed relay is re-submitted by the requester.
func New(baseURL, token string) *GitHub {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	client := req.C().
		SetBaseURL(baseURL).
		SetUserAgent(version.UserAgent()).
		SetCommonBearerAuthToken(token).
		SetCommonHeader(HeaderAccept, AcceptGitHubJSON).
		SetCommonHeader(HeaderAPIVersion, APIVersion).
		SetCommonRetryCount(0).
		SetTimeout(0). // uploads can run for a long time; cancellation comes from ctx
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &GitHub{
		client:   client,
		baseURL:  baseURL,
		Releases: newReleasesAPI(client, token),
	}
}

// BaseURL returns the API root requests are sent to.
func (g *GitHub) BaseURL() string {
	return g.baseURL
}
