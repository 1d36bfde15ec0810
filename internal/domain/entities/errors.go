package entities

import (
	"errors"
	"strings"
)

var (
	ErrAuthRequired        = errors.New("login required")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrSessionNotFound     = errors.New("session not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrFileNotFound        = errors.New("file not found")
	ErrEmptyGroupName      = errors.New("group name must not be empty")
	ErrInvalidGroupName    = errors.New("group name contains invalid characters")
	ErrDuplicateGroup      = errors.New("group name already exists")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoFilesSelected     = errors.New("no files selected")
)

// NoFilesUploadedError is returned when every item of a batch upload was rejected
type NoFilesUploadedError struct {
	Errors []string
}

func (e *NoFilesUploadedError) Error() string {
	if len(e.Errors) == 0 {
		return "no files were uploaded"
	}
	return "no files were uploaded: " + strings.Join(e.Errors, "; ")
}
