package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zots0127/locker/internal/usecase"
)

// GroupHandler serves the group registry
type GroupHandler struct {
	groups *usecase.GroupUseCase
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groups *usecase.GroupUseCase) *GroupHandler {
	return &GroupHandler{groups: groups}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// RegisterRoutes registers the group routes; mutations go through gate
func (h *GroupHandler) RegisterRoutes(api *gin.RouterGroup, gate gin.HandlerFunc) {
	api.GET("/groups", h.List)
	api.POST("/groups", gate, h.Create)
	api.DELETE("/groups/:name", gate, h.Delete)
}

// List returns every group
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "groups": groups})
}

// Create registers a new group
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body"})
		return
	}

	group, err := h.groups.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	logMutation(c, "group.create").Str("group", group.Name).Msg("group created")
	c.JSON(http.StatusOK, gin.H{"success": true, "group": group})
}

// Delete removes a group and its files
func (h *GroupHandler) Delete(c *gin.Context) {
	name := c.Param("name")
	if err := h.groups.Delete(c.Request.Context(), name); err != nil {
		respondError(c, err)
		return
	}
	logMutation(c, "group.delete").Str("group", name).Msg("group deleted")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("group %q deleted", name),
	})
}
