// Package registry persists the list of groups as one JSON document and keeps
// it consistent with the group directories under the upload root.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

const trashPrefix = ".trash-"

// JSONRegistry implements repository.GroupRepository over a JSON document.
// Every read-modify-write cycle runs under mu.
type JSONRegistry struct {
	mu         sync.Mutex
	path       string
	uploadRoot string
	now        func() time.Time
	lastID     int64

	// write persists a mutated document; replaced in tests to inject failures
	write func(*entities.GroupDocument) error
}

var _ repository.GroupRepository = (*JSONRegistry)(nil)

// Option configures a JSONRegistry
type Option func(*JSONRegistry)

// WithClock overrides the time source used for ids and creation timestamps
func WithClock(now func() time.Time) Option {
	return func(r *JSONRegistry) {
		r.now = now
	}
}

// Open prepares the upload root, creates an empty document if none exists
// and sweeps directories left behind by interrupted group deletions.
func Open(path, uploadRoot string, opts ...Option) (*JSONRegistry, error) {
	r := &JSONRegistry{
		path:       path,
		uploadRoot: uploadRoot,
		now:        time.Now,
	}
	r.write = r.save
	for _, opt := range opts {
		opt(r)
	}

	if err := os.MkdirAll(uploadRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, g := range doc.Groups {
		if id, err := strconv.ParseInt(g.ID, 10, 64); err == nil && id > r.lastID {
			r.lastID = id
		}
	}

	r.sweepTrash()
	return r, nil
}

// FolderFor returns the directory backing the named group
func (r *JSONRegistry) FolderFor(name string) string {
	return filepath.Join(r.uploadRoot, name)
}

// List returns groups in the order they were created
func (r *JSONRegistry) List(ctx context.Context) ([]entities.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	return doc.Groups, nil
}

// Get returns the group with exactly this name
func (r *JSONRegistry) Get(ctx context.Context, name string) (*entities.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if i := indexOf(doc.Groups, name); i >= 0 {
		g := doc.Groups[i]
		return &g, nil
	}
	return nil, entities.ErrGroupNotFound
}

// Create registers name and creates its directory. If the document cannot be
// written, a directory created by this call is removed again.
func (r *JSONRegistry) Create(ctx context.Context, name string) (*entities.Group, error) {
	name, err := entities.ValidateGroupName(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if indexOf(doc.Groups, name) >= 0 {
		return nil, entities.ErrDuplicateGroup
	}

	folder := r.FolderFor(name)
	_, statErr := os.Stat(folder)
	existed := statErr == nil
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create group directory: %w", err)
	}

	now := r.now()
	group := entities.Group{
		ID:        r.nextID(now),
		Name:      name,
		CreatedAt: entities.NewTimestamp(now),
		Folder:    folder,
	}
	doc.Groups = append(doc.Groups, group)

	if err := r.write(doc); err != nil {
		if !existed {
			os.RemoveAll(folder)
		}
		return nil, err
	}

	return &group, nil
}

// Delete moves the group's directory aside, drops the registry entry and then
// removes the moved directory. A failed registry write moves the directory back.
func (r *JSONRegistry) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	i := indexOf(doc.Groups, name)
	if i < 0 {
		return entities.ErrGroupNotFound
	}

	folder := r.FolderFor(name)
	trash := filepath.Join(r.uploadRoot, fmt.Sprintf("%s%s-%d", trashPrefix, name, r.now().UnixNano()))
	moved := false
	if err := os.Rename(folder, trash); err == nil {
		moved = true
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to detach group directory: %w", err)
	}

	doc.Groups = append(doc.Groups[:i], doc.Groups[i+1:]...)
	if err := r.write(doc); err != nil {
		if moved {
			if rerr := os.Rename(trash, folder); rerr != nil {
				log.Error().Err(rerr).Str("group", name).Str("trash", trash).Msg("failed to restore group directory")
			}
		}
		return err
	}

	if moved {
		if err := os.RemoveAll(trash); err != nil {
			// the registry no longer references it; the next Open sweeps it
			log.Warn().Err(err).Str("group", name).Str("trash", trash).Msg("failed to remove group directory")
		}
	}
	return nil
}

// nextID returns a millisecond timestamp id strictly greater than every id issued so far
func (r *JSONRegistry) nextID(now time.Time) string {
	id := now.UnixMilli()
	if id <= r.lastID {
		id = r.lastID + 1
	}
	r.lastID = id
	return strconv.FormatInt(id, 10)
}

func (r *JSONRegistry) load() (*entities.GroupDocument, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			doc := &entities.GroupDocument{Groups: []entities.Group{}}
			if err := r.save(doc); err != nil {
				return nil, err
			}
			return doc, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var doc entities.GroupDocument
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse registry %s: %w", r.path, err)
		}
	}
	if doc.Groups == nil {
		doc.Groups = []entities.Group{}
	}
	return &doc, nil
}

// save rewrites the whole document through a temp file and rename
func (r *JSONRegistry) save(doc *entities.GroupDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close registry: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}

func (r *JSONRegistry) sweepTrash() {
	entries, err := os.ReadDir(r.uploadRoot)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), trashPrefix) {
			continue
		}
		path := filepath.Join(r.uploadRoot, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to sweep deleted group directory")
			continue
		}
		log.Info().Str("path", path).Msg("swept deleted group directory")
	}
}

func indexOf(groups []entities.Group, name string) int {
	for i, g := range groups {
		if g.Name == name {
			return i
		}
	}
	return -1
}
