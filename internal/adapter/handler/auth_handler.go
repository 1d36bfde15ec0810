package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/locker/internal/usecase"
)

// CookieOptions controls the session cookie
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// AuthHandler handles login, logout and status
type AuthHandler struct {
	auth   *usecase.AuthUseCase
	cookie CookieOptions
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *usecase.AuthUseCase, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRoutes registers the auth routes; loginGuards run before Login
func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup, loginGuards ...gin.HandlerFunc) {
	api.POST("/auth/login", append(loginGuards, h.Login)...)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/status", h.Status)
}

// Login checks credentials and sets the session cookie
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, session.Token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "logged in",
		"username": session.Username,
	})
}

// Logout ends the session and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "logged out"})
}

// Status reports whether the caller is logged in
func (h *AuthHandler) Status(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)

	session, err := h.auth.Status(c.Request.Context(), token)
	if err != nil {
		if isAuthRequired(err) {
			c.JSON(http.StatusOK, gin.H{"success": true, "isLoggedIn": false})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"isLoggedIn": true,
		"username":   session.Username,
	})
}
