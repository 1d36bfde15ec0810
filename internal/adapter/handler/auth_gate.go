package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/usecase"
	"github.com/zots0127/locker/pkg/middleware"
)

const sessionKey = "session"

// RequireAuth rejects requests without a live session cookie
func RequireAuth(auth *usecase.AuthUseCase, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)

		session, err := auth.Status(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// CurrentSession returns the session stored by RequireAuth, if any
func CurrentSession(c *gin.Context) *entities.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*entities.Session); ok {
			return s
		}
	}
	return nil
}

// logMutation starts an info event for a mutation, tagged with the logged-in user
func logMutation(c *gin.Context, action string) *zerolog.Event {
	event := log.Info().
		Str("action", action).
		Str("request_id", middleware.GetRequestID(c))
	if session := CurrentSession(c); session != nil {
		event = event.Str("user", session.Username)
	}
	return event
}

func isAuthRequired(err error) bool {
	return errors.Is(err, entities.ErrAuthRequired)
}
