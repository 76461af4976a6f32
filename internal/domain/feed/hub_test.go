package feed

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodgram/internal/pkg/jwt"
)

type staticFollowers struct {
	ids []int64
}

func (s staticFollowers) ListFollowerIDs(ctx context.Context, authorID int64) ([]int64, error) {
	return s.ids, nil
}

func dialFeed(t *testing.T, serverURL, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws/feed?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFeedDeliversToOnlineFollowers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtService := jwt.New("test-secret", time.Hour)
	hub := NewHub()
	notifier := NewNotifier(hub, staticFollowers{ids: []int64{7, 8}})

	router := gin.New()
	router.GET("/ws/feed", NewHandler(hub, jwtService).HandleWebSocket)
	server := httptest.NewServer(router)
	defer server.Close()

	tokenFollower, err := jwtService.GenerateToken(7)
	require.NoError(t, err)
	tokenStranger, err := jwtService.GenerateToken(99)
	require.NoError(t, err)

	follower := dialFeed(t, server.URL, tokenFollower)
	stranger := dialFeed(t, server.URL, tokenStranger)

	// Ждём регистрации соединений в хабе.
	deadline := time.Now().Add(2 * time.Second)
	for !hub.Online(7) || !hub.Online(99) {
		if time.Now().After(deadline) {
			t.Fatal("connections were not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	notifier.RecipePublished(context.Background(), 1, 42, "Блины")

	follower.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := follower.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type    string `json:"type"`
		Payload struct {
			RecipeID int64  `json:"recipe_id"`
			AuthorID int64  `json:"author_id"`
			Name     string `json:"name"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventRecipePublished, event.Type)
	assert.EqualValues(t, 42, event.Payload.RecipeID)
	assert.EqualValues(t, 1, event.Payload.AuthorID)
	assert.Equal(t, "Блины", event.Payload.Name)

	// Не-подписчик события не получает.
	stranger.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err = stranger.ReadMessage()
	assert.Error(t, err)
}

func TestFeedRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtService := jwt.New("test-secret", time.Hour)
	router := gin.New()
	router.GET("/ws/feed", NewHandler(NewHub(), jwtService).HandleWebSocket)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/feed"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHubSendToOfflineUser(t *testing.T) {
	hub := NewHub()

	delivered := hub.SendToUser(123, &Event{Type: EventRecipePublished})
	assert.False(t, delivered)
	assert.Zero(t, hub.Broadcast([]int64{1, 2, 3}, &Event{Type: EventRecipePublished}))
}
