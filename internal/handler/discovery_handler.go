package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"certikid/internal/domain"
	"certikid/internal/invoice"
	"certikid/internal/port"
	"certikid/internal/service"
)

// DiscoveryHandler handles sequential discovery endpoints.
type DiscoveryHandler struct {
	discovery  *service.DiscoveryService
	checkpoint port.CheckpointStore
}

// NewDiscoveryHandler creates a new DiscoveryHandler.
func NewDiscoveryHandler(discovery *service.DiscoveryService, checkpoint port.CheckpointStore) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery, checkpoint: checkpoint}
}

// Run handles POST /api/v1/discovery/run
func (h *DiscoveryHandler) Run(c *gin.Context) {
	var req struct {
		MaxAttempts int `json:"max_attempts"`
	}
	// Body is optional; an empty body falls back to the configured bound.
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "max_attempts must be an integer")
		return
	}

	run, err := h.discovery.Run(c.Request.Context(), req.MaxAttempts)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, run)
}

// GetCheckpoint handles GET /api/v1/discovery/checkpoint
func (h *DiscoveryHandler) GetCheckpoint(c *gin.Context) {
	value, err := h.checkpoint.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			RespondOK(c, gin.H{"checkpoint": ""})
			return
		}
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"checkpoint": value})
}

// SetCheckpoint handles PUT /api/v1/discovery/checkpoint
func (h *DiscoveryHandler) SetCheckpoint(c *gin.Context) {
	var req struct {
		Checkpoint string `json:"checkpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "checkpoint is required")
		return
	}

	// Normalize before persisting so the stored value always round-trips.
	id, err := invoice.ParseIdentifier(req.Checkpoint)
	if err != nil {
		HandleError(c, err)
		return
	}

	if err := h.checkpoint.Set(c.Request.Context(), id.String()); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"checkpoint": id.String()})
}
