package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/usecase"
)

// uploadField is the multipart field carrying the files
const uploadField = "files"

// FileHandler serves uploads, listings and downloads
type FileHandler struct {
	files *usecase.FileUseCase
}

// NewFileHandler creates a new file handler
func NewFileHandler(files *usecase.FileUseCase) *FileHandler {
	return &FileHandler{files: files}
}

// RegisterRoutes registers the file routes; mutations go through gate
func (h *FileHandler) RegisterRoutes(router *gin.Engine, api *gin.RouterGroup, gate gin.HandlerFunc) {
	api.GET("/files/:group", h.List)
	api.POST("/upload/:group", gate, h.Upload)
	api.DELETE("/files/:group/:filename", gate, h.Delete)
	api.GET("/download/:group/:filename", h.Download)

	router.GET("/uploads/:group/:filename", h.Serve)
}

// List returns the files of a group, newest first
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.files.List(c.Request.Context(), c.Param("group"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": files})
}

// Upload stores the multipart "files" of the request in a group
func (h *FileHandler) Upload(c *gin.Context) {
	var items []usecase.UploadItem

	form, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondError(c, err)
		return
	case err != nil:
		// not multipart or malformed: treated as a request without files
		log.Debug().Err(err).Msg("unreadable upload form")
	default:
		defer func() {
			if err := form.RemoveAll(); err != nil {
				log.Warn().Err(err).Msg("failed to remove multipart temp files")
			}
		}()
		for _, fh := range form.File[uploadField] {
			fh := fh
			items = append(items, usecase.UploadItem{
				Filename: fh.Filename,
				Open: func() (io.ReadCloser, error) {
					return fh.Open()
				},
			})
		}
	}

	result, err := h.files.Upload(c.Request.Context(), c.Param("group"), items)
	if err != nil {
		respondError(c, err)
		return
	}
	logMutation(c, "file.upload").
		Str("group", c.Param("group")).
		Int("saved", len(result.Files)).
		Int("rejected", len(result.Errors)).
		Msg("files uploaded")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("uploaded %d file(s)", len(result.Files)),
		"files":   result.Files,
		"errors":  result.Errors,
	})
}

// Delete removes one file
func (h *FileHandler) Delete(c *gin.Context) {
	if err := h.files.Delete(c.Request.Context(), c.Param("group"), c.Param("filename")); err != nil {
		respondError(c, err)
		return
	}
	logMutation(c, "file.delete").Str("group", c.Param("group")).Str("file", c.Param("filename")).Msg("file deleted")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "file deleted"})
}

// Serve returns the file bytes inline, with range support
func (h *FileHandler) Serve(c *gin.Context) {
	h.send(c, false)
}

// Download returns the file as an attachment named after the stored file
func (h *FileHandler) Download(c *gin.Context) {
	h.send(c, true)
}

func (h *FileHandler) send(c *gin.Context, attachment bool) {
	f, info, err := h.files.Open(c.Request.Context(), c.Param("group"), c.Param("filename"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	if attachment {
		c.Header("Content-Disposition", attachmentDisposition(info.Name()))
	}
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// attachmentDisposition quotes ASCII names and percent-encodes the rest (RFC 6266)
func attachmentDisposition(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf || name[i] < 0x20 {
			return "attachment; filename*=UTF-8''" + url.PathEscape(name)
		}
	}
	return `attachment; filename="` + quoteEscaper.Replace(name) + `"`
}
