package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"video-platform/pkg/metrics"
	"video-platform/service"
)

const (
	userIdKey       = "user_id"
	requestIdHeader = "X-Request-ID"
)

// RequestLogger puts a per-request logger into the request context and logs the outcome.
func RequestLogger(base zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestId := c.GetHeader(requestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Header(requestIdHeader, requestId)

		logger := base.With().
			Str("request_id", requestId).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Int("status", status).Dur("latency", time.Since(start)).Msg("request")
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWith(c, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		}

		userId, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		setUser(c, userId)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and never rejects.
func OptionalAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if userId, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, userId)
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, userId uuid.UUID) {
	c.Set(userIdKey, userId)
	logger := zerolog.Ctx(c.Request.Context()).With().Str("user_id", userId.String()).Logger()
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIdKey)
	if !ok {
		return uuid.Nil, false
	}
	userId, ok := v.(uuid.UUID)
	return userId, ok
}

// mustUser is used behind RequireAuth.
func mustUser(c *gin.Context) uuid.UUID {
	userId, _ := currentUser(c)
	return userId
}

func pathId(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
