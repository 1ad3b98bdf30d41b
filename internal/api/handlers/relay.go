package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
)

// streamRelay forwards completion deltas over the response as a plain text
// stream. Headers are committed lazily so validation failures before the
// first token can still change the status code.
type streamRelay struct {
	c       *gin.Context
	started bool
}

func newStreamRelay(c *gin.Context) *streamRelay {
	return &streamRelay{c: c}
}

// WriteDelta writes one chunk and flushes it to the client immediately.
func (r *streamRelay) WriteDelta(delta string) error {
	if !r.started {
		header := r.c.Writer.Header()
		header.Set("Content-Type", "text/plain; charset=utf-8")
		header.Set("Cache-Control", "no-cache")
		header.Set("X-Accel-Buffering", "no")
		r.started = true
	}
	if _, err := io.WriteString(r.c.Writer, delta); err != nil {
		return err
	}
	r.c.Writer.Flush()
	return nil
}

// Started reports whether any bytes reached the client.
func (r *streamRelay) Started() bool { return r.started }
