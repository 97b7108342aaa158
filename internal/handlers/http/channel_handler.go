package http

import (
	"net/http"
	"strconv"

	"classhub/internal/core/domain"
	"classhub/internal/core/ports"
	"classhub/pkg/errors"

	"github.com/gin-gonic/gin"
)

type ChannelHandler struct {
	channels ports.ChannelService
	settings ports.SettingsService
	chat     ports.ChatService
}

func NewChannelHandler(
	channels ports.ChannelService,
	settings ports.SettingsService,
	chat ports.ChatService,
) *ChannelHandler {
	return &ChannelHandler{
		channels: channels,
		settings: settings,
		chat:     chat,
	}
}

func (h *ChannelHandler) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	api := router.Group("/api/v1")
	api.Use(auth)
	{
		api.POST("/channels", h.CreateChannel)
		api.GET("/channels", h.ListChannels)
		api.GET("/channels/:id", h.GetChannel)
		api.PUT("/channels/:id", h.UpdateChannel)
		api.DELETE("/channels/:id", h.DeleteChannel)

		api.POST("/channels/:id/connect", h.Connect)
		api.POST("/channels/:id/disconnect", h.Disconnect)

		api.GET("/channels/:id/settings", h.GetSettings)
		api.PUT("/channels/:id/settings", h.UpdateSettings)
		api.POST("/channels/:id/presenter", h.AssignPresenter)
		api.PUT("/channels/:id/members/:user_id/name", h.RenameMember)

		api.GET("/channels/:id/messages", h.ListMessages)
	}
}

type createChannelRequest struct {
	Title    string `json:"title" binding:"required,min=1,max=100"`
	URL      string `json:"url" binding:"max=2048"`
	PhotoURL string `json:"photo_url" binding:"max=2048"`
	Public   *bool  `json:"is_public"`
}

func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	var req createChannelRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, errors.NewMalformedInputError("invalid request format"))
		return
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}

	channel, err := h.channels.Create(c.Request.Context(), userID, req.Title, req.URL, req.PhotoURL, public)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"channel": channel})
}

func (h *ChannelHandler) ListChannels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	channels, err := h.channels.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channels": channels,
		"page":     page,
	})
}

func (h *ChannelHandler) GetChannel(c *gin.Context) {
	channel, err := h.channels.Get(c.Request.Context(), domain.ChannelID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": channel})
}

func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	var patch ports.ChannelPatch
	if err := c.BindJSON(&patch); err != nil {
		respondError(c, errors.NewMalformedInputError("invalid request format"))
		return
	}

	channel, err := h.channels.Update(c.Request.Context(), userID, domain.ChannelID(c.Param("id")), patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": channel})
}

func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	if err := h.channels.Delete(c.Request.Context(), userID, domain.ChannelID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *ChannelHandler) Connect(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	membership, err := h.channels.Connect(c.Request.Context(), userID, domain.ChannelID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"membership": membership})
}

func (h *ChannelHandler) Disconnect(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	if err := h.channels.Disconnect(c.Request.Context(), userID, domain.ChannelID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}

func (h *ChannelHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context(), domain.ChannelID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *ChannelHandler) UpdateSettings(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	var patch domain.DeviceSettingsPatch
	if err := c.BindJSON(&patch); err != nil {
		respondError(c, errors.NewMalformedInputError("invalid request format"))
		return
	}

	settings, err := h.settings.UpdateDeviceSettings(c.Request.Context(), domain.ChannelID(c.Param("id")), userID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type assignPresenterRequest struct {
	PresenterID domain.UserID `json:"presenter_id"`
}

func (h *ChannelHandler) AssignPresenter(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	var req assignPresenterRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, errors.NewMalformedInputError("invalid request format"))
		return
	}

	settings, err := h.settings.AssignPresenter(c.Request.Context(), domain.ChannelID(c.Param("id")), userID, req.PresenterID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type renameMemberRequest struct {
	DisplayName string `json:"display_name" binding:"required,max=100"`
}

func (h *ChannelHandler) RenameMember(c *gin.Context) {
	userID, ok := actingUserID(c)
	if !ok {
		respondError(c, domain.ErrNotAuthenticated)
		return
	}

	var req renameMemberRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, errors.NewMalformedInputError("invalid request format"))
		return
	}

	setting, err := h.settings.RenameMembership(
		c.Request.Context(),
		domain.ChannelID(c.Param("id")),
		userID,
		domain.UserID(c.Param("user_id")),
		req.DisplayName,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

func (h *ChannelHandler) ListMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.chat.History(c.Request.Context(), domain.ChannelID(c.Param("id")), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
