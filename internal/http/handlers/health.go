package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medlibrary-backend/internal/http/response"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

type HealthHandler struct {
	library services.LibraryService
}

func NewHealthHandler(library services.LibraryService) *HealthHandler {
	return &HealthHandler{library: library}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports 503 until the first reload has succeeded. An empty library
// that loaded cleanly is ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.library.Loaded() {
		response.RespondError(c, http.StatusServiceUnavailable, "not_ready", errors.New("content library has not loaded yet"))
		return
	}
	snap := h.library.Snapshot()
	response.RespondOK(c, gin.H{
		"generation": snap.Generation,
		"records":    snap.Store.Len(),
	})
}
