package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fajrglobal/clinic-api/pkg/httputil"
)

// SizeLimitConfig represents size limit configuration
type SizeLimitConfig struct {
	MaxBodySize   int64 // in bytes
	MaxHeaderSize int   // in bytes
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20, // 1MB
		MaxHeaderSize: 1 << 14, // 16KB
	}
}

// SizeLimit rejects oversized requests and caps how much of the body a
// handler can read.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.MaxBodySize > 0 {
			if c.Request.ContentLength > config.MaxBodySize {
				tooLarge(c, fmt.Sprintf("body size exceeds %d bytes", config.MaxBodySize))
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		}

		if config.MaxHeaderSize > 0 {
			headerSize := 0
			for name, values := range c.Request.Header {
				headerSize += len(name)
				for _, value := range values {
					headerSize += len(value)
				}
			}
			if headerSize > config.MaxHeaderSize {
				tooLarge(c, fmt.Sprintf("header size exceeds %d bytes", config.MaxHeaderSize))
				return
			}
		}

		c.Next()
	}
}

func tooLarge(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.ErrorBody{
		Detail: "Request size exceeds limit: " + detail,
		Code:   http.StatusRequestEntityTooLarge,
	})
}
