package service

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/contacts-api/internal/errs"
)

const (
	// RequestIDHeader carries the correlation id of a request in both directions.
	RequestIDHeader = "X-Request-ID"

	requestIDKey = "request_id"
	loggerKey    = "logger"
)

// RequestID reuses the X-Request-ID header of the incoming request or generates a new id, and sends
// it back with the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or an empty string.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// ContextLogger stores a logger carrying the request id and route in the gin context.
func (s *Service) ContextLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := s.logger.With().
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Logger()
		c.Set(loggerKey, &logger)
		c.Next()
	}
}

// Logger returns the request scoped logger, or a logger that discards everything if ContextLogger
// did not run.
func Logger(c *gin.Context) *zerolog.Logger {
	if value, exists := c.Get(loggerKey); exists {
		if logger, ok := value.(*zerolog.Logger); ok {
			return logger
		}
	}
	nop := zerolog.Nop()
	return &nop
}

// RequestLogger writes one log line per request once it has been handled. Server errors are logged
// at error level, client errors at warn level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		logger := Logger(c)
		var e *zerolog.Event
		switch {
		case status >= 500:
			e = logger.Error()
			if err := c.Errors.Last(); err != nil {
				e = e.Err(err.Err)
			}
		case status >= 400:
			e = logger.Warn()
		default:
			e = logger.Info()
		}
		e.Dur("latency", time.Since(start)).
			Int("status", status).
			Str("uri", c.Request.RequestURI).
			Str("ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Msg("API")
	}
}

// Recovery turns a panic in a handler into an INTERNAL SERVER ERROR response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		Logger(c).Error().Interface("panic", recovered).Msg("recovered from panic")
		abort(c, errs.NewInternalServerError(fmt.Errorf("panic: %v", recovered)))
	})
}
