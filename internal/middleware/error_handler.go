package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/M0hammed2o/midlands-price-checker-backend/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler logs the errors handlers attach with c.Error together with the
// status that went out: 5xx at error level, anything else at warn. A handler
// that attached an error without writing a response gets a generic 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Internal server error"))
		}

		status := c.Writer.Status()
		errs := make([]error, len(c.Errors))
		for i, e := range c.Errors {
			errs[i] = e.Err
		}
		event := log.Warn()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Errs("errors", errs).
			Msg("request failed")
	}
}

// Recovery turns panics into 500 responses; the panic value only goes to the log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Internal server error"))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. Health and metrics checks from the
// shop-floor scanners and the scraper are logged at debug so they do not
// drown out scans and imports.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		case isQuietPath(c.Request.URL.Path):
			event = log.Debug()
		default:
			event = log.Info()
		}
		event.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func isQuietPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/metrics")
}
