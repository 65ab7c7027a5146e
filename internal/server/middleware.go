package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zekoder/zegraphql/internal/logger"
)

// observe logs every request and records it in the HTTP metrics
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		l := s.logger
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			l = l.With().Str("error", errs.String()).Logger()
		}
		logger.LogRequest(l, c.Request.Method, c.Request.URL.Path, status, elapsed)

		if s.opts.Metrics != nil {
			s.opts.Metrics.RecordRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)
		}
	}
}
