// Package stream bridges the cache's market-data pub/sub channel onto
// long-lived websocket connections. Each connection owns its own
// subscription; the two share a lifetime in both directions.
package stream

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (CORS handled upstream)
		return true
	},
}

// Subscriber opens a dedicated channel subscription for one connection.
type Subscriber interface {
	Subscribe(ctx context.Context) *redis.PubSub
}

// Streamer serves the /ws/market-data endpoint.
type Streamer struct {
	subscriber Subscriber
}

// NewStreamer creates the live feed streamer.
func NewStreamer(subscriber Subscriber) *Streamer {
	return &Streamer{subscriber: subscriber}
}

// Handler upgrades the request and runs the bridge for the connection's
// lifetime. A stream failure tears down this connection only.
func (s *Streamer) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		s.stream(conn)
	}
}

// stream forwards every published message as a text frame in publish order.
// No reordering, no batching, no application-level queue: if the consumer
// cannot keep up, the write deadline trips and the connection dies.
func (s *Streamer) stream(conn *websocket.Conn) {
	remote := conn.RemoteAddr().String()
	log.Info().Str("client", remote).Msg("live feed connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := s.subscriber.Subscribe(ctx)
	defer sub.Close()
	defer conn.Close()

	// Read pump exists only to notice the peer going away and to answer
	// pings; inbound frames carry no meaning on this endpoint.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Debug().Err(err).Str("client", remote).Msg("live feed read error")
				}
				return
			}
		}
	}()

	msgs := sub.Channel()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("client", remote).Msg("live feed closed by peer")
			return

		case msg, ok := <-msgs:
			if !ok {
				// Subscription terminated; take the connection down with it.
				log.Warn().Str("client", remote).Msg("live feed subscription closed")
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Debug().Err(err).Str("client", remote).Msg("live feed write failed")
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
