package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"anoa.com/indieplatform/internal/entity"
	notifRepo "anoa.com/indieplatform/internal/modules/notification/repository"
	notifService "anoa.com/indieplatform/internal/modules/notification/service"
	"anoa.com/indieplatform/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketForwardsPublishedNotifications(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	rdb, mr := testutil.NewRedis(t)
	svc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), rdb)
	h := NewNotificationHandler(svc, rdb)

	recipient := testutil.CreateUser(t, db)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", recipient.ID.String())
		c.Next()
	}, h.HandleWebSocket)

	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	channel := notifService.Channel(recipient.ID)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(channel)[channel] == 1
	}, 2*time.Second, 10*time.Millisecond)

	n := &entity.Notification{RecipientID: recipient.ID, Type: entity.NotificationSystem, Title: "Welcome"}
	svc.Notify(context.Background(), n)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Welcome")
}

func TestMarkAsReadRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	h := NewNotificationHandler(notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil), nil)
	user := testutil.CreateUser(t, db)

	r := gin.New()
	r.PUT("/notifications/:id/read", func(c *gin.Context) {
		c.Set("user_id", user.ID.String())
	}, h.MarkAsRead)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/notifications/nope/read", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
