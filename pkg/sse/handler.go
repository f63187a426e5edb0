package sse

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ServeSSE handles Server-Sent Events connections.
// @Summary Subscribe to the server event stream (SSE)
// @Description Opens a long-lived SSE connection pushing creation-stage and print-job events. Subscribe with `/events?userid=<id>`; EventSource cannot set an Authorization header, hence the query parameter.
// @Tags SSE
// @Produce text/event-stream
// @Param userid query string true "User ID / topic to subscribe"
// @Success 200 {string} string "event stream"
// @Failure 400 {string} string "missing topic"
// @Failure 500 {string} string "server error"
// @Router /events [get]
func ServeSSE(c *gin.Context) {
	topic := c.Query("userid")
	if topic == "" {
		c.String(http.StatusBadRequest, "missing topic")
		return
	}

	h := GetHub()
	if h == nil {
		c.String(http.StatusInternalServerError, "sse hub not initialized")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// per-connection channel (buffered 16); this handler owns it
	msgCh := make(chan []byte, 16)
	h.Subscribe(msgCh, topic)
	defer h.Unsubscribe(msgCh, topic)

	notify := c.Request.Context().Done()
	// initial comment doubles as a handshake/keepalive for proxies
	fmt.Fprintf(c.Writer, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-notify:
			return
		case msg := <-msgCh:
			fmt.Fprintf(c.Writer, "data: %s\n\n", string(msg))
			log.Printf("Sent message to topic %s: %s", topic, string(msg))
			flusher.Flush()
		}
	}
}
