package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/utils"
	"github.com/sirupsen/logrus"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		entry := utils.InfoLogger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		})
		if username, ok := c.Get(CtxUsername); ok {
			entry = entry.WithField("user", username)
		}
		entry.Info(path)
	}
}
