package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/medlibrary-backend/internal/http/response"
	"github.com/yungbote/medlibrary-backend/internal/platform/logger"
)

type AdminMiddleware struct {
	log   *logger.Logger
	token string
}

func NewAdminMiddleware(log *logger.Logger, token string) *AdminMiddleware {
	return &AdminMiddleware{
		log:   log.With("middleware", "AdminMiddleware"),
		token: strings.TrimSpace(token),
	}
}

// RequireAdmin accepts "Authorization: Bearer <token>". With no token
// configured every admin request is refused.
func (am *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if am.token == "" {
			response.AbortError(c, http.StatusForbidden, "admin_disabled", errors.New("admin endpoints are disabled"))
			return
		}
		got := bearerToken(c.GetHeader("Authorization"))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(am.token)) != 1 {
			am.log.Warn("admin request rejected", "path", c.FullPath(), "client_ip", c.ClientIP())
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid admin token"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
