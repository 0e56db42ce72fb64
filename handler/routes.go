package handler

import (
	"github.com/gin-gonic/gin"
	"video-platform/service"
)

type HttpDependencies struct {
	Auth          service.AuthService
	Channels      service.ChannelService
	Videos        service.VideoService
	Uploads       service.UploadService
	Comments      service.CommentService
	Reactions     service.ReactionService
	Subscriptions service.SubscriptionService

	MaxVideoBytes int64
	MaxImageBytes int64
}

type Handlers struct {
	deps HttpDependencies
}

func NewHandlers(deps HttpDependencies) *Handlers {
	return &Handlers{deps: deps}
}

// Mount registers the REST API on api.
func (h *Handlers) Mount(api *gin.RouterGroup) {
	requireAuth := RequireAuth(h.deps.Auth)
	optionalAuth := OptionalAuth(h.deps.Auth)

	auth := api.Group("/auth")
	auth.POST("/register", h.RegisterUser)
	auth.POST("/login", h.Login)
	auth.GET("/me", requireAuth, h.Me)

	channels := api.Group("/channels")
	channels.POST("", requireAuth, h.CreateChannel)
	channels.GET("/me", requireAuth, h.MyChannel)
	channels.GET("/:id", h.GetChannel)
	channels.PUT("/:id", requireAuth, h.UpdateChannel)
	channels.DELETE("/:id", requireAuth, h.DeleteChannel)
	channels.POST("/:id/avatar", requireAuth, h.UploadAvatar)
	channels.GET("/:id/videos", optionalAuth, h.ChannelVideos)
	channels.POST("/:id/subscribe", requireAuth, h.Subscribe)
	channels.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	channels.GET("/:id/subscription-status", requireAuth, h.SubscriptionStatus)

	api.GET("/subscriptions", requireAuth, h.MySubscriptions)

	videos := api.Group("/videos")
	videos.POST("", requireAuth, h.UploadVideo)
	videos.GET("/recent", h.RecentVideos)
	videos.GET("/search", h.SearchVideos)
	videos.GET("/:id", h.GetVideo)
	videos.GET("/:id/progress", h.VideoProgress)
	videos.GET("/:id/stream", h.VideoStream)
	videos.PUT("/:id", requireAuth, h.UpdateVideo)
	videos.DELETE("/:id", requireAuth, h.DeleteVideo)
	videos.POST("/:id/thumbnail", requireAuth, h.UploadThumbnail)
	videos.POST("/:id/view", h.RecordView)
	videos.POST("/:id/like", requireAuth, h.Like)
	videos.POST("/:id/dislike", requireAuth, h.Dislike)
	videos.GET("/:id/like-status", requireAuth, h.LikeStatus)
	videos.GET("/:id/comments", h.ListComments)
	videos.POST("/:id/comments", requireAuth, h.CreateComment)

	comments := api.Group("/comments")
	comments.PUT("/:id", requireAuth, h.UpdateComment)
	comments.DELETE("/:id", requireAuth, h.DeleteComment)
}
