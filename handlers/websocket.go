package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type EventSubscriber interface {
	Available() bool
	Subscribe(ctx context.Context) (<-chan *redis.Message, func() error)
}

// LivePredictions streams every served prediction to the client as it is
// published on the Redis channel.
func LivePredictions(events EventSubscriber, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if events == nil || !events.Available() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live prediction feed is not configured"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ch, unsubscribe := events.Subscribe(ctx)
		defer unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var data any = msg.Payload
				if json.Valid([]byte(msg.Payload)) {
					data = json.RawMessage(msg.Payload)
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				err := conn.WriteJSON(gin.H{
					"type": "prediction",
					"data": data,
				})
				if err != nil {
					logger.Debug("websocket write failed", zap.Error(err))
					return
				}
			}
		}
	}
}
