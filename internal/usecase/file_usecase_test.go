package usecase_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/infrastructure/storage"
	"github.com/zots0127/locker/internal/usecase"
	"github.com/zots0127/locker/internal/usecase/mocks"
)

func item(name, content string) usecase.UploadItem {
	return usecase.UploadItem{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func newFileUseCase(t *testing.T, mirror *mocks.MockMirror) (*usecase.FileUseCase, *mocks.MockGroupRepository) {
	t.Helper()
	groups := &mocks.MockGroupRepository{Root: t.TempDir()}
	groups.On("Get", mock.Anything, "cats").Return(&entities.Group{Name: "cats"}, nil).Maybe()
	groups.On("Get", mock.Anything, mock.Anything).Return(nil, entities.ErrGroupNotFound).Maybe()

	if mirror == nil {
		return usecase.NewFileUseCase(groups, storage.NewFileStore(), nil), groups
	}
	return usecase.NewFileUseCase(groups, storage.NewFileStore(), mirror), groups
}

func TestFileUseCase_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed batch", func(t *testing.T) {
		uc, groups := newFileUseCase(t, nil)

		result, err := uc.Upload(ctx, "cats", []usecase.UploadItem{
			item("a.PNG", "png-bytes"),
			item("", "skipped"),
			item("notes.txt", "text"),
			item("clip.mp4", "mp4-bytes"),
		})

		require.NoError(t, err)
		require.Len(t, result.Files, 2)
		assert.Equal(t, "cats_1.png", result.Files[0].Name)
		assert.Equal(t, "a.PNG", result.Files[0].OriginalName)
		assert.Equal(t, entities.FileTypeImage, result.Files[0].Type)
		assert.Equal(t, int64(9), result.Files[0].Size)
		assert.Equal(t, "cats_2.mp4", result.Files[1].Name)
		assert.Equal(t, entities.FileTypeVideo, result.Files[1].Type)
		assert.Equal(t, []string{"notes.txt - unsupported file type"}, result.Errors)

		data, err := os.ReadFile(filepath.Join(groups.FolderFor("cats"), "cats_2.mp4"))
		require.NoError(t, err)
		assert.Equal(t, "mp4-bytes", string(data))
	})

	t.Run("unknown group", func(t *testing.T) {
		uc, _ := newFileUseCase(t, nil)
		_, err := uc.Upload(ctx, "dogs", []usecase.UploadItem{item("a.png", "x")})
		assert.ErrorIs(t, err, entities.ErrGroupNotFound)
	})

	t.Run("no items", func(t *testing.T) {
		uc, _ := newFileUseCase(t, nil)
		_, err := uc.Upload(ctx, "cats", nil)
		assert.ErrorIs(t, err, entities.ErrNoFilesSelected)
	})

	t.Run("every item rejected", func(t *testing.T) {
		uc, groups := newFileUseCase(t, nil)
		_, err := uc.Upload(ctx, "cats", []usecase.UploadItem{
			item("a.webp", "x"),
			item("b.bmp", "x"),
		})

		var noFiles *entities.NoFilesUploadedError
		require.ErrorAs(t, err, &noFiles)
		assert.Equal(t, []string{
			"a.webp - unsupported file type",
			"b.bmp - unsupported file type",
		}, noFiles.Errors)

		entries, _ := os.ReadDir(groups.FolderFor("cats"))
		assert.Empty(t, entries)
	})

	t.Run("only empty names", func(t *testing.T) {
		uc, _ := newFileUseCase(t, nil)
		_, err := uc.Upload(ctx, "cats", []usecase.UploadItem{item("", "x")})

		var noFiles *entities.NoFilesUploadedError
		require.ErrorAs(t, err, &noFiles)
		assert.Empty(t, noFiles.Errors)
	})

	t.Run("mirrors stored files", func(t *testing.T) {
		mirror := new(mocks.MockMirror)
		mirror.On("Put", mock.Anything, "cats/cats_1.gif", mock.AnythingOfType("string")).Return(errors.New("offline"))

		uc, _ := newFileUseCase(t, mirror)
		result, err := uc.Upload(ctx, "cats", []usecase.UploadItem{item("x.gif", "gif")})

		require.NoError(t, err)
		assert.Len(t, result.Files, 1)
		mirror.AssertExpectations(t)
	})
}

func TestFileUseCase_UploadAbortsOnIOFailure(t *testing.T) {
	ctx := context.Background()
	groups := &mocks.MockGroupRepository{Root: "/srv/uploads"}
	groups.On("Get", ctx, "cats").Return(&entities.Group{Name: "cats"}, nil)

	diskFull := errors.New("no space left on device")
	files := new(mocks.MockFileRepository)
	files.On("Save", ctx, "cats", "/srv/uploads/cats", "a.png").
		Return(&entities.FileInfo{Name: "cats_1.png", Type: entities.FileTypeImage, Size: 1}, nil)
	files.On("Save", ctx, "cats", "/srv/uploads/cats", "b.png").Return(nil, diskFull)

	uc := usecase.NewFileUseCase(groups, files, nil)
	_, err := uc.Upload(ctx, "cats", []usecase.UploadItem{
		item("a.png", "a"),
		item("b.png", "b"),
		item("c.png", "c"),
	})

	assert.ErrorIs(t, err, diskFull)
	files.AssertNumberOfCalls(t, "Save", 2)
}

func TestFileUseCase_UploadOpenFailure(t *testing.T) {
	ctx := context.Background()
	groups := &mocks.MockGroupRepository{Root: t.TempDir()}
	groups.On("Get", ctx, "cats").Return(&entities.Group{Name: "cats"}, nil)

	uc := usecase.NewFileUseCase(groups, storage.NewFileStore(), nil)
	_, err := uc.Upload(ctx, "cats", []usecase.UploadItem{{
		Filename: "a.png",
		Open:     func() (io.ReadCloser, error) { return nil, os.ErrClosed },
	}})

	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestFileUseCase_ListDeleteOpen(t *testing.T) {
	ctx := context.Background()
	uc, groups := newFileUseCase(t, nil)

	_, err := uc.Upload(ctx, "cats", []usecase.UploadItem{item("a.png", "one"), item("b.mp4", "two")})
	require.NoError(t, err)

	files, err := uc.List(ctx, "cats")
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, "/uploads/cats/"+f.Name, f.URL)
	}

	f, info, err := uc.Open(ctx, "cats", "cats_1.png")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
	f.Close()

	require.NoError(t, uc.Delete(ctx, "cats", "cats_1.png"))
	assert.ErrorIs(t, uc.Delete(ctx, "cats", "cats_1.png"), entities.ErrFileNotFound)

	_, _, err = uc.Open(ctx, "cats", "cats_1.png")
	assert.ErrorIs(t, err, entities.ErrFileNotFound)

	// listing does not consult the registry
	require.NoError(t, os.MkdirAll(groups.FolderFor("unregistered"), 0755))
	files, err = uc.List(ctx, "unregistered")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = uc.List(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrGroupNotFound)
}

func TestFileUseCase_RejectsUnsafeGroupNames(t *testing.T) {
	ctx := context.Background()
	uc, _ := newFileUseCase(t, nil)

	for _, group := range []string{"..", ".", "", " cats", "a/b"} {
		_, err := uc.List(ctx, group)
		assert.ErrorIs(t, err, entities.ErrGroupNotFound, group)

		_, _, err = uc.Open(ctx, group, "x.png")
		assert.ErrorIs(t, err, entities.ErrFileNotFound, group)

		assert.ErrorIs(t, uc.Delete(ctx, group, "x.png"), entities.ErrFileNotFound, group)
	}
}

func TestFileUseCase_DeleteMirrored(t *testing.T) {
	ctx := context.Background()
	mirror := new(mocks.MockMirror)
	mirror.On("Put", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	mirror.On("Delete", mock.Anything, "cats/cats_1.png").Return(nil)

	uc, _ := newFileUseCase(t, mirror)
	_, err := uc.Upload(ctx, "cats", []usecase.UploadItem{item("a.png", "x")})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, "cats", "cats_1.png"))
	mirror.AssertExpectations(t)
}
