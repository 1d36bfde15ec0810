package entities

import (
	"path"
	"strings"
)

// FileType is the presentational classification of a stored file
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeOther FileType = "other"
)

var (
	imageExtensions = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "webp": true,
	}
	videoExtensions = map[string]bool{
		"mp4": true, "avi": true, "mov": true, "mkv": true, "flv": true, "wmv": true, "webm": true,
	}
	// uploadExtensions is narrower than the classification sets:
	// bmp, webp and wmv classify but are refused at upload time.
	uploadExtensions = map[string]bool{
		"png": true, "jpg": true, "jpeg": true, "gif": true,
		"mp4": true, "avi": true, "mov": true, "webm": true, "mkv": true, "flv": true,
	}
)

// FileInfo describes a file that was just uploaded
type FileInfo struct {
	Name         string   `json:"name"`
	OriginalName string   `json:"original_name"`
	Type         FileType `json:"type"`
	Size         int64    `json:"size"`
}

// FileMeta describes a stored file in a group listing
type FileMeta struct {
	Name     string    `json:"name"`
	Type     FileType  `json:"type"`
	Size     int64     `json:"size"`
	Modified Timestamp `json:"modified"`
	URL      string    `json:"url"`
}

// UploadResult aggregates the outcome of a batch upload
type UploadResult struct {
	Files  []FileInfo `json:"files"`
	Errors []string   `json:"errors"`
}

// Extension returns the lower-cased text after the last dot, or "" if there is none
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// ClassifyFile derives the file type from the extension
func ClassifyFile(filename string) FileType {
	ext := Extension(filename)
	switch {
	case imageExtensions[ext]:
		return FileTypeImage
	case videoExtensions[ext]:
		return FileTypeVideo
	default:
		return FileTypeOther
	}
}

// IsUploadAllowed reports whether a file with this name may be uploaded
func IsUploadAllowed(filename string) bool {
	return uploadExtensions[Extension(filename)]
}

// FileURL is the public inline URL of a stored file
func FileURL(group, name string) string {
	return path.Join("/uploads", group, name)
}

// MirrorKey is the object key a stored file is replicated under
func MirrorKey(group, name string) string {
	return group + "/" + name
}
