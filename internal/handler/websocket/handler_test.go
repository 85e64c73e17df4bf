package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cordi-chat/internal/domain"
	"cordi-chat/internal/hub"
	redisstate "cordi-chat/internal/infra/state/redis"
	"cordi-chat/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleInbox_ReceivesPublishedMessages(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	h := hub.NewHub(client, "chat:")
	go h.Run()
	t.Cleanup(h.Stop)
	require.NoError(t, h.StartSubscription(context.Background()))
	t.Cleanup(h.StopAllSubscriptions)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/inbox", func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uint(2))
		c.Next()
	}, NewWebSocketHandler(h, "*").HandleInbox)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/inbox"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return h.ConnectionCount(2) == 1 }, 2*time.Second, 10*time.Millisecond)

	notifier := redisstate.NewRedisInboxNotifier(client, "chat:")
	msg := domain.Message{ID: 11, SenderID: 1, ReceiverID: 2, Message: "9-5"}
	require.NoError(t, notifier.PublishMessage(context.Background(), 2, msg))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event redisstate.InboxEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, redisstate.EventTypeMessage, event.Type)
	assert.Equal(t, uint(2), event.UserID)
	assert.Equal(t, "9-5", event.Message.Message)

	// 断开后注销
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.ConnectionCount(2) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleInbox_Unauthenticated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/inbox", NewWebSocketHandler(hub.NewHub(client, "chat:"), "").HandleInbox)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/inbox", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
