package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/pkg/middleware"
)

// respondError maps a use case error onto the JSON error envelope
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var noFiles *entities.NoFilesUploadedError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
			"success": false,
			"error":   "upload exceeds the size limit",
		})
	case errors.As(err, &noFiles):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "no files were uploaded",
			"errors":  noFiles.Errors,
		})
	case errors.Is(err, entities.ErrAuthRequired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   err.Error(),
			"code":    "AUTH_REQUIRED",
		})
	case errors.Is(err, entities.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, entities.ErrGroupNotFound),
		errors.Is(err, entities.ErrFileNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": notFoundMessage(err)})
	case errors.Is(err, entities.ErrEmptyGroupName),
		errors.Is(err, entities.ErrInvalidGroupName),
		errors.Is(err, entities.ErrDuplicateGroup),
		errors.Is(err, entities.ErrNoFilesSelected),
		errors.Is(err, entities.ErrUnsupportedFileType):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		log.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"error":      "internal server error",
			"request_id": middleware.GetRequestID(c),
		})
	}
}

// notFoundMessage drops wrapped detail such as the reason a name was refused
func notFoundMessage(err error) string {
	if errors.Is(err, entities.ErrGroupNotFound) {
		return entities.ErrGroupNotFound.Error()
	}
	return entities.ErrFileNotFound.Error()
}
