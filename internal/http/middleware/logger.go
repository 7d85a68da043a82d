package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func Logger(l zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		ev := l.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = l.Error()
		case status >= http.StatusBadRequest:
			ev = l.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("request_id", c.GetString(RequestIDHeader)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", latency).
			Msg("request")
	}
}
