package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"palmr-api/internal/application/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:       http.StatusBadRequest,
	apperr.KindInviteInvalid:    http.StatusBadRequest,
	apperr.KindInviteUsed:       http.StatusBadRequest,
	apperr.KindInviteExpired:    http.StatusBadRequest,
	apperr.KindUsernameTaken:    http.StatusBadRequest,
	apperr.KindEmailTaken:       http.StatusBadRequest,
	apperr.KindUnauthorized:     http.StatusUnauthorized,
	apperr.KindForbidden:        http.StatusForbidden,
	apperr.KindNotFound:         http.StatusNotFound,
	apperr.KindTokenNotFound:    http.StatusNotFound,
	apperr.KindTokenExpired:     http.StatusGone,
	apperr.KindTooLarge:         http.StatusRequestEntityTooLarge,
	apperr.KindUnsupportedMedia: http.StatusUnsupportedMediaType,
}

func statusOf(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// respondError writes the service error as JSON. Internal errors are logged
// under op and answered with fallback only.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error, fallback string) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		logger.Error(op+" error", zap.Error(err), zap.String("route", c.FullPath()))
	}
	c.JSON(code, gin.H{"error": apperr.Message(err, fallback)})
}
