package ghsdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ghrelay/ghrelay/internal/relayerr"
	"github.com/imroc/req/v3"
)

var (
	// ErrReleaseNotFound is returned when the configured tag has no release.
	ErrReleaseNotFound = relayerr.ErrReleaseNotFound
)

// APIError is a non-2xx answer from the GitHub API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d - %s", e.StatusCode, e.Body)
}

func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Body: string(body)}
}

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	// got a response, but api returned an error
	if !resp.IsSuccessState() {
		return fmt.Errorf("%s: %w", operation, newAPIError(resp.StatusCode, resp.Bytes()))
	}

	return nil
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
