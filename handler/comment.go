package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"video-platform/dto"
)

func (h *Handlers) ListComments(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var page dto.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, "invalid pagination")
		return
	}

	comments, err := h.deps.Comments.List(c.Request.Context(), id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handlers) CreateComment(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	comment, err := h.deps.Comments.Create(c.Request.Context(), mustUser(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handlers) UpdateComment(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	comment, err := h.deps.Comments.Update(c.Request.Context(), id, mustUser(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *Handlers) DeleteComment(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Comments.Delete(c.Request.Context(), id, mustUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Comment deleted"})
}
