package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"propertybw/internal/model"
	"propertybw/internal/store"
)

// PreferencesHandler handles per-device UI preferences.
type PreferencesHandler struct {
	store  *store.PreferencesStore
	logger *zap.Logger
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(s *store.PreferencesStore, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{store: s, logger: logger}
}

// Get handles GET /api/preferences. A device without stored preferences
// gets the defaults.
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.store.Get(c.Request.Context(), deviceID(c))
	if err != nil {
		h.logger.Error("loading preferences failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// Put handles PUT /api/preferences: a wholesale replacement.
func (h *PreferencesHandler) Put(c *gin.Context) {
	var prefs model.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.store.Put(c.Request.Context(), deviceID(c), prefs); err != nil {
		h.logger.Error("saving preferences failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
