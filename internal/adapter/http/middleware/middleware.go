package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"funding-platform/internal/core/domain"
	"funding-platform/internal/core/ports"
	"funding-platform/pkg/apperror"
	"funding-platform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxUser       = "user"
	CtxTelegramID = "telegram_id"
)

// initDataEnvelope extracts the identity payload from an authenticated
// request body without consuming the rest of it.
type initDataEnvelope struct {
	InitData string `json:"initData"`
}

// InitDataAuth authenticates a request through its embedded initData payload
// and resolves the internal user, creating it on first contact. The payload
// travels in the JSON body, so the body is read and then restored for the
// handler's own binding.
//
// Every verification failure maps to the same access-denied error; callers
// learn nothing about which check failed.
func InitDataAuth(verifier ports.InitDataVerifier, identitySvc ports.IdentityService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, apperror.ErrAccessDeniedInitData())
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var envelope initDataEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil || envelope.InitData == "" {
			response.Error(c, apperror.ErrAccessDeniedInitData())
			c.Abort()
			return
		}

		identity, err := verifier.Verify(envelope.InitData)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		user, err := identitySvc.EnsureUser(c.Request.Context(), identity.TelegramID)
		if err != nil {
			log.Error().Err(err).Str("telegram_id", identity.TelegramID).Msg("failed to resolve user")
			response.Error(c, apperror.ErrAccessDeniedUser())
			c.Abort()
			return
		}

		c.Set(CtxUser, user)
		c.Set(CtxTelegramID, identity.TelegramID)
		c.Next()
	}
}

// UserFromContext returns the authenticated user set by InitDataAuth.
func UserFromContext(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.ErrorBody{
					Error: "internal_error",
				})
			}
		}()
		c.Next()
	}
}

// RequestTimeout bounds the request context with a deadline so downstream
// database and network calls are cancelled when the budget runs out. A
// non-positive duration disables the limit.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
