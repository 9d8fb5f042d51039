package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// requireReady rejects requests with 503 until ready reports true.
func requireReady(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service is starting"})
			return
		}
		c.Next()
	}
}

// requestLogger logs each completed request and counts it by route.
func requestLogger(logger *slog.Logger, metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status_code", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}
		if errs := c.Errors.String(); errs != "" {
			attrs = append(attrs, "error", errs)
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request completed", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("request completed", attrs...)
		default:
			logger.Debug("request completed", attrs...)
		}
	}
}
