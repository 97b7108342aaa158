package http

import (
	"net/http"
	"strings"
	"time"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	"classhub/internal/core/services"
	"classhub/pkg/errors"
	"classhub/pkg/utils"
	"classhub/pkg/validation"

	"github.com/gin-gonic/gin"
)

// AuthHandler mints tokens for identities asserted by the frontend's
// identity provider. There are no passwords here: the email is the
// identity, and a first-seen email gets a user record on the spot.
type AuthHandler struct {
	authService services.AuthService
	users       ports.UserRepository
}

func NewAuthHandler(authService services.AuthService, users ports.UserRepository) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/auth")
	{
		api.POST("/token", h.IssueToken)
		api.POST("/refresh", h.RefreshToken)
	}
}

type issueTokenRequest struct {
	Email    string `json:"email" binding:"required,max=254"`
	FullName string `json:"fullname" binding:"required,max=100"`
	PhotoURL string `json:"photo_url" binding:"max=2048"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required,max=2048"`
}

func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, errors.NewMalformedInputError("invalid request format"))
		return
	}

	req.Email = utils.NormalizeEmail(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)

	if err := validation.ValidateEmail(req.Email); err != nil {
		respondError(c, errors.NewMalformedInputError(err.Error()))
		return
	}
	if err := validation.ValidateFullName(req.FullName); err != nil {
		respondError(c, errors.NewMalformedInputError(err.Error()))
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err == domain.ErrUserNotFound {
		user = &domain.User{
			ID:        domain.UserID(utils.GenerateUserID()),
			FullName:  req.FullName,
			Email:     req.Email,
			PhotoURL:  req.PhotoURL,
			CreatedAt: time.Now().UTC(),
		}
		if createErr := h.users.Create(c.Request.Context(), user); createErr != nil {
			respondError(c, createErr)
			return
		}
	} else if err != nil {
		respondError(c, err)
		return
	}

	accessToken, err := h.authService.GenerateToken(user.ID, user.Email, user.FullName)
	if err != nil {
		respondError(c, errors.NewInternalError("failed to generate access token"))
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken(user.ID)
	if err != nil {
		respondError(c, errors.NewInternalError("failed to generate refresh token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          user,
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, errors.NewMalformedInputError("invalid request format"))
		return
	}

	claims, err := h.authService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondError(c, errors.NewNotAuthenticatedError("invalid refresh token"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, errors.NewNotAuthenticatedError("unknown user"))
		return
	}

	accessToken, err := h.authService.GenerateToken(user.ID, user.Email, user.FullName)
	if err != nil {
		respondError(c, errors.NewInternalError("failed to generate access token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": accessToken,
	})
}
