package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"video-platform/constant"
	"video-platform/dto"
	"video-platform/service"
)

// readFile reads the multipart field name, bounded by limit bytes.
func (h *Handlers) readFile(c *gin.Context, field string, limit int64) ([]byte, *multipart.FileHeader, bool) {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWith(c, http.StatusRequestEntityTooLarge, CodeTooLarge, "file is too large")
			return nil, nil, false
		}
		badRequest(c, field+" file is required")
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		badRequest(c, "could not read "+field+" file")
		return nil, nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		badRequest(c, "could not read "+field+" file")
		return nil, nil, false
	}
	return data, header, true
}

func (h *Handlers) UploadVideo(c *gin.Context) {
	data, header, ok := h.readFile(c, "file", h.deps.MaxVideoBytes)
	if !ok {
		return
	}

	input := service.UploadInput{
		Title:       c.PostForm("title"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if description, ok := c.GetPostForm("description"); ok {
		input.Description = &description
	}

	video, err := h.deps.Uploads.Upload(c.Request.Context(), mustUser(c), input)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Video uploaded successfully"
	if video.Status == constant.VideoStatusProcessing {
		message = "Video uploaded, processing in background"
	}
	c.JSON(http.StatusCreated, dto.UploadVideoResponse{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		Status:      video.Status,
		Message:     message,
	})
}

func (h *Handlers) RecentVideos(c *gin.Context) {
	var page dto.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, "invalid pagination")
		return
	}

	videos, err := h.deps.Videos.ListRecent(c.Request.Context(), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handlers) SearchVideos(c *gin.Context) {
	var page dto.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, "invalid pagination")
		return
	}

	videos, err := h.deps.Videos.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")), page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *Handlers) GetVideo(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	video, err := h.deps.Videos.GetVideo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *Handlers) VideoProgress(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	progress, err := h.deps.Videos.GetProgress(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *Handlers) VideoStream(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	stream, err := h.deps.Videos.GetStream(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stream)
}

func (h *Handlers) UpdateVideo(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	video, err := h.deps.Videos.UpdateMetadata(c.Request.Context(), id, mustUser(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *Handlers) DeleteVideo(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Videos.DeleteVideo(c.Request.Context(), id, mustUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Video deleted"})
}

func (h *Handlers) UploadThumbnail(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	data, header, ok := h.readFile(c, "thumbnail", h.deps.MaxImageBytes)
	if !ok {
		return
	}

	video, err := h.deps.Videos.UploadThumbnail(c.Request.Context(), id, mustUser(c), data, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *Handlers) RecordView(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	if err := h.deps.Videos.IncrementView(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "View recorded"})
}

func (h *Handlers) react(c *gin.Context, reaction constant.Reaction) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	state, err := h.deps.Reactions.SetReaction(c.Request.Context(), mustUser(c), id, reaction)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handlers) Like(c *gin.Context) {
	h.react(c, constant.ReactionLike)
}

func (h *Handlers) Dislike(c *gin.Context) {
	h.react(c, constant.ReactionDislike)
}

func (h *Handlers) LikeStatus(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}

	state, err := h.deps.Reactions.GetReaction(c.Request.Context(), mustUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
