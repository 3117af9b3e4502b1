// Package relayerr holds the error taxonomy shared by the relay pipeline and its collaborators.
package relayerr

import "errors"

var (
	// transfer
	ErrFileTooLarge    = errors.New("file too large")
	ErrDownloadFailed  = errors.New("download failed")
	ErrReleaseNotFound = errors.New("release not found")
	ErrUploadFailed    = errors.New("upload failed")

	// dispatch
	ErrAlreadyBusy       = errors.New("active upload in progress")
	ErrUnrecognizedInput = errors.New("unrecognized input")
)
