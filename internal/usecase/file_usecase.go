package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
	"github.com/zots0127/locker/pkg/metrics"
)

// UploadItem is one file of a batch upload. Open is called once, and only
// for items that pass the name checks.
type UploadItem struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// FileUseCase handles uploads, listings and removal of group files
type FileUseCase struct {
	groups repository.GroupRepository
	files  repository.FileRepository
	mirror repository.Mirror
}

// NewFileUseCase creates a new file use case. mirror may be nil.
func NewFileUseCase(groups repository.GroupRepository, files repository.FileRepository, mirror repository.Mirror) *FileUseCase {
	return &FileUseCase{groups: groups, files: files, mirror: mirror}
}

// Upload stores every acceptable item under the group's next sequential
// names. Rejected items are reported in the result; an IO failure aborts
// the remaining items and keeps those already stored.
func (f *FileUseCase) Upload(ctx context.Context, group string, items []UploadItem) (*entities.UploadResult, error) {
	if _, err := f.groups.Get(ctx, group); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, entities.ErrNoFilesSelected
	}

	dir := f.groups.FolderFor(group)
	result := &entities.UploadResult{
		Files:  []entities.FileInfo{},
		Errors: []string{},
	}

	for _, item := range items {
		if item.Filename == "" {
			continue
		}

		if !entities.IsUploadAllowed(item.Filename) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s - %s", item.Filename, entities.ErrUnsupportedFileType))
			metrics.UploadsTotal.WithLabelValues(metrics.ResultRejected).Inc()
			continue
		}

		info, err := f.saveItem(ctx, group, dir, item)
		if errors.Is(err, entities.ErrUnsupportedFileType) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s - %s", item.Filename, entities.ErrUnsupportedFileType))
			metrics.UploadsTotal.WithLabelValues(metrics.ResultRejected).Inc()
			continue
		}
		if err != nil {
			metrics.UploadsTotal.WithLabelValues(metrics.ResultFailed).Inc()
			log.Error().Err(err).Str("group", group).Str("file", item.Filename).
				Int("stored", len(result.Files)).Msg("upload aborted")
			return nil, err
		}

		metrics.UploadsTotal.WithLabelValues(metrics.ResultSaved).Inc()
		metrics.UploadBytesTotal.Add(float64(info.Size))
		result.Files = append(result.Files, *info)

		f.mirrorPut(ctx, group, dir, info.Name)
	}

	if len(result.Files) == 0 {
		return nil, &entities.NoFilesUploadedError{Errors: result.Errors}
	}

	log.Info().Str("group", group).Int("stored", len(result.Files)).Int("rejected", len(result.Errors)).Msg("upload complete")
	return result, nil
}

func (f *FileUseCase) saveItem(ctx context.Context, group, dir string, item UploadItem) (*entities.FileInfo, error) {
	src, err := item.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", item.Filename, err)
	}
	defer src.Close()

	return f.files.Save(ctx, group, dir, src, item.Filename)
}

func (f *FileUseCase) mirrorPut(ctx context.Context, group, dir, name string) {
	if f.mirror == nil {
		return
	}
	if err := f.mirror.Put(ctx, entities.MirrorKey(group, name), filepath.Join(dir, name)); err != nil {
		metrics.MirrorErrorsTotal.WithLabelValues("put").Inc()
		log.Warn().Err(err).Str("group", group).Str("file", name).Msg("failed to mirror file")
	}
}

// List returns the files of a group, newest first
func (f *FileUseCase) List(ctx context.Context, group string) ([]entities.FileMeta, error) {
	dir, err := f.folder(group)
	if err != nil {
		return nil, err
	}

	return f.files.List(ctx, dir)
}

// Delete removes one file from a group
func (f *FileUseCase) Delete(ctx context.Context, group, filename string) error {
	dir, err := f.folder(group)
	if err != nil {
		return entities.ErrFileNotFound
	}

	if err := f.files.Delete(ctx, dir, filename); err != nil {
		return err
	}

	log.Info().Str("group", group).Str("file", filename).Msg("file deleted")
	metrics.DeletesTotal.WithLabelValues("file").Inc()

	if f.mirror != nil {
		if err := f.mirror.Delete(ctx, entities.MirrorKey(group, filename)); err != nil {
			metrics.MirrorErrorsTotal.WithLabelValues("delete").Inc()
			log.Warn().Err(err).Str("group", group).Str("file", filename).Msg("failed to remove mirrored file")
		}
	}
	return nil
}

// Open returns a stored file for serving; the caller closes it
func (f *FileUseCase) Open(ctx context.Context, group, filename string) (*os.File, os.FileInfo, error) {
	dir, err := f.folder(group)
	if err != nil {
		return nil, nil, entities.ErrFileNotFound
	}
	return f.files.Open(ctx, dir, filename)
}

// folder maps a group name from a URL to its directory without consulting
// the registry. Names that could not have been created are not found.
func (f *FileUseCase) folder(group string) (string, error) {
	name, err := entities.ValidateGroupName(group)
	if err != nil || name != group {
		return "", entities.ErrGroupNotFound
	}
	return f.groups.FolderFor(name), nil
}
