package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/medlibrary-backend/internal/http/response"
	"github.com/yungbote/medlibrary-backend/internal/platform/apierr"
)

func respondContentError(c *gin.Context, err error) {
	ae := apierr.FromContent(err)
	response.RespondError(c, ae.Status, ae.Code, ae.Err)
}
