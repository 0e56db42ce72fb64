package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-platform/dto"
)

func (h *Handlers) CreateChannel(c *gin.Context) {
	var req dto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	channel, err := h.deps.Channels.Create(c.Request.Context(), mustUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, channel)
}

func (h *Handlers) MyChannel(c *gin.Context) {
	channel, err := h.deps.Channels.GetMine(c.Request.Context(), mustUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (h *Handlers) GetChannel(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	channel, err := h.deps.Channels.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (h *Handlers) UpdateChannel(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	channel, err := h.deps.Channels.Update(c.Request.Context(), id, mustUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

func (h *Handlers) DeleteChannel(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Channels.Delete(c.Request.Context(), id, mustUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Channel deleted"})
}

func (h *Handlers) UploadAvatar(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	data, _, ok := h.readFile(c, "avatar", h.deps.MaxImageBytes)
	if !ok {
		return
	}

	channel, err := h.deps.Channels.UploadAvatar(c.Request.Context(), id, mustUser(c), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

// ChannelVideos lists unpublished videos only to the channel owner.
func (h *Handlers) ChannelVideos(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var page dto.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, "invalid pagination")
		return
	}

	ctx := c.Request.Context()
	includeUnpublished := false
	if userId, ok := currentUser(c); ok {
		channel, err := h.deps.Channels.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		includeUnpublished = channel.UserId == userId
	}

	videos, err := h.deps.Videos.ListByChannel(ctx, id, includeUnpublished, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handlers) Subscribe(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Subscriptions.Subscribe(c.Request.Context(), mustUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SubscriptionState{IsSubscribed: true})
}

func (h *Handlers) Unsubscribe(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Subscriptions.Unsubscribe(c.Request.Context(), mustUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SubscriptionState{IsSubscribed: false})
}

func (h *Handlers) SubscriptionStatus(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	state, err := h.deps.Subscriptions.Status(c.Request.Context(), mustUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handlers) MySubscriptions(c *gin.Context) {
	subscriptions, err := h.deps.Subscriptions.List(c.Request.Context(), mustUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriptions)
}
