package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medlibrary-backend/internal/http/response"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
	"github.com/yungbote/medlibrary-backend/internal/services"
)

type ContentHandler struct {
	log     *logger.Logger
	library services.LibraryService
}

func NewContentHandler(log *logger.Logger, library services.LibraryService) *ContentHandler {
	return &ContentHandler{
		log:     log.With("handler", "ContentHandler"),
		library: library,
	}
}

// GET /api/content
func (h *ContentHandler) ListContent(c *gin.Context) {
	recs := h.library.List(c.Request.Context())
	response.RespondOK(c, gin.H{
		"content":    summarize(recs),
		"generation": h.library.Snapshot().Generation,
	})
}

// GET /api/content/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	rec, err := h.library.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondContentError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": rec})
}

// GET /api/content/:id/levels/:tier
func (h *ContentHandler) GetLevel(c *gin.Context) {
	view, err := h.library.Level(c.Request.Context(), c.Param("id"), c.Param("tier"))
	if err != nil {
		respondContentError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"level": view})
}

// GET /api/content/:id/related?relationship=&targetType=
func (h *ContentHandler) GetRelated(c *gin.Context) {
	filter, err := services.ParseRelatedFilter(c.Query("relationship"), c.Query("targetType"))
	if err != nil {
		respondContentError(c, err)
		return
	}
	res, err := h.library.Related(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		respondContentError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"related": relatedViews(res)})
}

// GET /api/tags/:category/:value
func (h *ContentHandler) FindByTag(c *gin.Context) {
	recs := h.library.FindByTag(c.Request.Context(), c.Param("category"), c.Param("value"))
	response.RespondOK(c, gin.H{"content": summarize(recs)})
}

// GET /api/search?q=
func (h *ContentHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_query", errors.New("query parameter q is required"))
		return
	}
	recs := h.library.SearchNames(c.Request.Context(), q)
	response.RespondOK(c, gin.H{"content": summarize(recs)})
}
