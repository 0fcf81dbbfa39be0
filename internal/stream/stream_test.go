package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradegate/gateway-api/internal/realtime"
)

func setupStreamServer(t *testing.T) (*realtime.Service, string) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := realtime.NewService(client, "market_data")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/market-data", NewStreamer(svc).Handler())

	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		_ = client.Close()
		mr.Close()
	})

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/market-data"
	return svc, wsURL
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// publishUntilReceived publishes warmup messages until the connection's
// subscription is registered with the broker.
func publishUntilReceived(t *testing.T, svc *realtime.Service, want int64) {
	t.Helper()

	ctx := context.Background()
	require.Eventually(t, func() bool {
		n, err := svc.PublishMarketData(ctx, "warmup")
		return err == nil && n >= want
	}, 2*time.Second, 10*time.Millisecond)
}

func readFrames(t *testing.T, conn *websocket.Conn, n int) []string {
	t.Helper()

	var frames []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(frames) < n {
		kind, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.TextMessage, kind, "feed frames are text")
		if string(payload) == "warmup" {
			continue
		}
		frames = append(frames, string(payload))
	}
	return frames
}

func TestStreamDeliversPublishedMessagesInOrder(t *testing.T) {
	svc, wsURL := setupStreamServer(t)
	conn := dial(t, wsURL)

	publishUntilReceived(t, svc, 1)

	published := []string{
		`{"symbol":"BTCUSD","price":42000.5}`,
		`{"symbol":"BTCUSD","price":42001.0}`,
		`{"symbol":"ETHUSD","price":2200.25}`,
	}
	ctx := context.Background()
	for _, msg := range published {
		_, err := svc.PublishMarketData(ctx, msg)
		require.NoError(t, err)
	}

	frames := readFrames(t, conn, len(published))
	assert.Equal(t, published, frames, "frames must match publish order with no drops")
}

func TestStreamFansOutToEveryConnection(t *testing.T) {
	svc, wsURL := setupStreamServer(t)

	first := dial(t, wsURL)
	second := dial(t, wsURL)

	publishUntilReceived(t, svc, 2)

	_, err := svc.PublishMarketData(context.Background(), "tick-1")
	require.NoError(t, err)

	assert.Equal(t, []string{"tick-1"}, readFrames(t, first, 1))
	assert.Equal(t, []string{"tick-1"}, readFrames(t, second, 1))
}

func TestStreamClientDisconnectReleasesSubscription(t *testing.T) {
	svc, wsURL := setupStreamServer(t)
	conn := dial(t, wsURL)

	publishUntilReceived(t, svc, 1)
	require.NoError(t, conn.Close())

	// Once the bridge notices the disconnect it unsubscribes, and later
	// publishes find no receivers.
	ctx := context.Background()
	require.Eventually(t, func() bool {
		n, err := svc.PublishMarketData(ctx, "after-close")
		return err == nil && n == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerRejectsPlainHTTPRequest(t *testing.T) {
	_, wsURL := setupStreamServer(t)

	httpURL := "http" + strings.TrimPrefix(wsURL, "ws")
	resp, err := http.Get(httpURL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
