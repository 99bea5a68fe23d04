package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propertybw/internal/model"
	"propertybw/internal/store"
)

// SavedSearchHandler handles the per-device saved-search collection.
type SavedSearchHandler struct {
	store  *store.SavedSearchStore
	logger *zap.Logger
}

// NewSavedSearchHandler creates a new saved-search handler.
func NewSavedSearchHandler(s *store.SavedSearchStore, logger *zap.Logger) *SavedSearchHandler {
	return &SavedSearchHandler{store: s, logger: logger}
}

// List handles GET /api/saved-searches.
func (h *SavedSearchHandler) List(c *gin.Context) {
	searches, err := h.store.List(c.Request.Context(), deviceID(c))
	if err != nil {
		h.logger.Error("listing saved searches failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list saved searches"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved_searches": searches})
}

// Create handles POST /api/saved-searches.
func (h *SavedSearchHandler) Create(c *gin.Context) {
	var req model.SaveSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := req.Filters.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}

	saved, err := h.store.Save(c.Request.Context(), deviceID(c), req.Name, req.Query, req.Filters, req.AlertsEnabled)
	if err != nil {
		if errors.Is(err, store.ErrBlankName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("saving search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save search"})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Get handles GET /api/saved-searches/:id: loads the snapshot so the
// client can re-apply it.
func (h *SavedSearchHandler) Get(c *gin.Context) {
	saved, err := h.store.Load(c.Request.Context(), deviceID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrSearchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved search not found"})
			return
		}
		h.logger.Error("loading saved search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load saved search"})
		return
	}
	c.JSON(http.StatusOK, saved)
}

// Delete handles DELETE /api/saved-searches/:id. Deleting a missing id
// succeeds.
func (h *SavedSearchHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), deviceID(c), c.Param("id")); err != nil {
		h.logger.Error("deleting saved search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete saved search"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleAlerts handles POST /api/saved-searches/:id/alerts.
func (h *SavedSearchHandler) ToggleAlerts(c *gin.Context) {
	saved, err := h.store.ToggleAlerts(c.Request.Context(), deviceID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrSearchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Saved search not found"})
			return
		}
		h.logger.Error("toggling alerts failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle alerts"})
		return
	}
	c.JSON(http.StatusOK, saved)
}
