package ghsdk

import "time"

const (
	DefaultBaseURL = "https://api.github.com"

	HeaderAccept     = "Accept"
	HeaderAPIVersion = "X-GitHub-Api-Version"
	HeaderUserAgent  = "User-Agent"

	AcceptGitHubJSON = "application/vnd.github+json"
	APIVersion       = "2022-11-28"

	contentTypeOctetStream = "application/octet-stream"
)

// Release is the subset of a GitHub release the relay needs.
type Release struct {
	ID        int64  `json:"id"`
	TagName   string `json:"tag_name"`
	Name      string `json:"name"`
	UploadURL string `json:"upload_url"`
	HTMLURL   string `json:"html_url"`
}

// Asset is a file attached to a release.
type Asset struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Size               int64     `json:"size"`
	State              string    `json:"state"`
	ContentType        string    `json:"content_type"`
	BrowserDownloadURL string    `json:"browser_download_url"`
	CreatedAt          time.Time `json:"created_at"`
}
