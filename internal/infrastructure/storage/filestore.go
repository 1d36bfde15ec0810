// Package storage keeps uploaded files on local disk, one directory per group,
// with names assigned from a per-group sequence.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

const tempPrefix = ".upload-"

// FileStore implements repository.FileRepository on the local filesystem
type FileStore struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ repository.FileRepository = (*FileStore)(nil)

// NewFileStore creates a new file store
func NewFileStore() *FileStore {
	return &FileStore{locks: make(map[string]*sync.Mutex)}
}

// groupLock returns the mutex serialising name assignment inside dir
func (s *FileStore) groupLock(dir string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := filepath.Clean(dir)
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Save streams src into a temp file inside dir, then, holding the group lock,
// picks the next free "<group>_<n>.<ext>" name and renames the temp file onto it.
func (s *FileStore) Save(ctx context.Context, group, dir string, src io.Reader, originalName string) (*entities.FileInfo, error) {
	if !entities.IsUploadAllowed(originalName) {
		return nil, entities.ErrUnsupportedFileType
	}
	ext := entities.Extension(originalName)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create group directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	size, err := io.Copy(tmp, src)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to sync upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close upload: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := s.groupLock(dir)
	lock.Lock()
	defer lock.Unlock()

	seq, err := NextSequence(group, dir)
	if err != nil {
		return nil, err
	}
	name := SequentialName(group, seq, ext)
	target := filepath.Join(dir, name)
	for {
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", name, err)
		}
		seq++
		name = SequentialName(group, seq, ext)
		target = filepath.Join(dir, name)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return nil, fmt.Errorf("failed to move upload into place: %w", err)
	}
	committed = true

	log.Debug().Str("group", group).Str("file", name).Int64("size", size).Msg("file stored")

	return &entities.FileInfo{
		Name:         name,
		OriginalName: originalName,
		Type:         entities.ClassifyFile(name),
		Size:         size,
	}, nil
}

// List returns the visible regular files in dir, most recently modified first
func (s *FileStore) List(ctx context.Context, dir string) ([]entities.FileMeta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entities.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to read group directory: %w", err)
	}

	group := filepath.Base(dir)
	type listed struct {
		meta entities.FileMeta
		info os.FileInfo
	}
	items := make([]listed, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		items = append(items, listed{
			meta: entities.FileMeta{
				Name:     entry.Name(),
				Type:     entities.ClassifyFile(entry.Name()),
				Size:     info.Size(),
				Modified: entities.NewTimestamp(info.ModTime()),
				URL:      entities.FileURL(group, entry.Name()),
			},
			info: info,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].info.ModTime(), items[j].info.ModTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return items[i].meta.Name > items[j].meta.Name
	})

	files := make([]entities.FileMeta, len(items))
	for i, item := range items {
		files[i] = item.meta
	}
	return files, nil
}

// Delete removes filename from dir
func (s *FileStore) Delete(ctx context.Context, dir, filename string) error {
	path, err := resolve(dir, filename)
	if err != nil {
		return err
	}

	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return entities.ErrFileNotFound
		}
		return fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	if info.IsDir() {
		return entities.ErrFileNotFound
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return entities.ErrFileNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", filename, err)
	}
	return nil
}

// Open opens filename in dir for reading
func (s *FileStore) Open(ctx context.Context, dir, filename string) (*os.File, os.FileInfo, error) {
	path, err := resolve(dir, filename)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, entities.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat %s: %w", filename, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, entities.ErrFileNotFound
	}
	return f, info, nil
}

var errBadName = errors.New("bad file name")

// resolve joins dir and filename, refusing anything but a single visible path element
func resolve(dir, filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") || strings.ContainsRune(filename, '\\') {
		return "", fmt.Errorf("%w: %w", entities.ErrFileNotFound, errBadName)
	}
	return filepath.Join(dir, filename), nil
}
