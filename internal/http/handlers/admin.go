package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medlibrary-backend/internal/http/response"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

type AdminHandler struct {
	log     *logger.Logger
	library services.LibraryService
}

func NewAdminHandler(log *logger.Logger, library services.LibraryService) *AdminHandler {
	return &AdminHandler{
		log:     log.With("handler", "AdminHandler"),
		library: library,
	}
}

// GET /api/audit
func (h *AdminHandler) Audit(c *gin.Context) {
	report := h.library.Audit()
	snap := h.library.Snapshot()
	response.RespondOK(c, gin.H{
		"generation": snap.Generation,
		"builtAt":    snap.BuiltAt,
		"records":    snap.Store.Len(),
		"errors":     report.Errors(),
		"warnings":   report.Warnings(),
		"report":     report,
	})
}

// POST /api/admin/reload
func (h *AdminHandler) Reload(c *gin.Context) {
	res, err := h.library.Reload(c.Request.Context())
	if err != nil {
		h.log.Error("reload failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "reload_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"reload": res})
}

// POST /api/admin/mirror
func (h *AdminHandler) Mirror(c *gin.Context) {
	res, err := h.library.Mirror(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoMirror) {
			response.RespondError(c, http.StatusServiceUnavailable, "mirror_not_configured", err)
			return
		}
		h.log.Error("mirror failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "mirror_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"mirror": res})
}

// POST /api/admin/graph
func (h *AdminHandler) ProjectGraph(c *gin.Context) {
	if err := h.library.ProjectGraph(c.Request.Context()); err != nil {
		h.log.Error("graph projection failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, "graph_projection_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"generation": h.library.Snapshot().Generation})
}
