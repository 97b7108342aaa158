package http

import (
	"net/http"

	"classhub/internal/core/domain"
	"classhub/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to an HTTP response. Services
// return *errors.AppError for every caller fault; anything else that
// slips through is mapped by sentinel, then treated as internal.
func respondError(c *gin.Context, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		c.JSON(appErr.HTTPStatus, gin.H{
			"error":   string(appErr.Code),
			"message": appErr.Message,
		})
		return
	}

	switch err {
	case domain.ErrChannelNotFound, domain.ErrUserNotFound,
		domain.ErrMembershipNotFound, domain.ErrSettingsNotFound,
		domain.ErrTokenNotFound:
		c.JSON(http.StatusNotFound, gin.H{
			"error":   string(errors.ErrCodeNotFound),
			"message": err.Error(),
		})
	case domain.ErrDuplicateTitle, domain.ErrDuplicateUser, domain.ErrDuplicateOwner:
		c.JSON(http.StatusConflict, gin.H{
			"error":   string(errors.ErrCodeConflict),
			"message": err.Error(),
		})
	case domain.ErrNotAuthenticated:
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   string(errors.ErrCodeNotAuthenticated),
			"message": err.Error(),
		})
	case domain.ErrNotAuthorized, domain.ErrNotMember:
		c.JSON(http.StatusForbidden, gin.H{
			"error":   string(errors.ErrCodeNotAuthorized),
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   string(errors.ErrCodeInternal),
			"message": "internal server error",
		})
	}
}

// actingUserID pulls the authenticated user id placed by the auth middleware.
func actingUserID(c *gin.Context) (domain.UserID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	userID, ok := value.(domain.UserID)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
