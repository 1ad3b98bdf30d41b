package logging

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/recallweb/recall/internal/util"
)

// maxLoggedBodyBytes caps how much of a request body the request log keeps.
const maxLoggedBodyBytes = 8 << 10

// GinRequestBodyLogger logs redacted JSON request bodies at debug level when
// enabled reports true. The body is re-buffered so downstream binding still
// sees it in full.
func GinRequestBodyLogger(enabled func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled() || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBodyBytes+1))
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))

		logged := body
		truncated := false
		if len(logged) > maxLoggedBodyBytes {
			logged = logged[:maxLoggedBodyBytes]
			truncated = true
		}

		log.WithFields(log.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"truncated": truncated,
		}).Debug(string(util.RedactSensitiveJSON(logged)))

		c.Next()
	}
}
