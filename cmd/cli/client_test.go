package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytfile-go/api/handlers"
	"github.com/yourusername/ytfile-go/internal/app"
	"github.com/yourusername/ytfile-go/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAPIClient_Submit(t *testing.T) {
	busy := false
	router := gin.New()
	router.POST("/api/v1/downloads", func(c *gin.Context) {
		var body handlers.SubmitRequest
		require.NoError(t, c.ShouldBindJSON(&body))
		if busy {
			c.JSON(http.StatusConflict, gin.H{"error": "a download is already in progress"})
			return
		}
		busy = true
		c.JSON(http.StatusAccepted, gin.H{
			"request": domain.NewDownloadRequest(body.URL, "/srv/downloads", domain.ModeAudio),
		})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := newAPIClient(server.URL + "/")

	req, err := client.Submit(handlers.SubmitRequest{URL: "https://example.test/v", Mode: "audio"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/downloads", req.SaveDir)
	assert.Equal(t, domain.ModeAudio, req.Mode)

	_, err = client.Submit(handlers.SubmitRequest{URL: "https://example.test/w"})
	assert.ErrorIs(t, err, errBusy)
}

func TestAPIClient_ErrorMessage(t *testing.T) {
	router := gin.New()
	router.GET("/api/v1/info", func(c *gin.Context) {
		assert.Equal(t, "https://example.test/watch?v=1&t=2", c.Query("url"))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Unsupported URL: nope"})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	_, err := newAPIClient(server.URL).Info("https://example.test/watch?v=1&t=2")

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Unsupported URL: nope", apiErr.Message)
}

func TestAPIClient_HistoryAndDelete(t *testing.T) {
	var deleted string
	router := gin.New()
	router.GET("/api/v1/history", func(c *gin.Context) {
		assert.Equal(t, "5", c.Query("limit"))
		c.JSON(http.StatusOK, gin.H{"count": 1, "records": []*domain.DownloadRecord{{ID: "abc", Status: domain.RecordSuccess}}})
	})
	router.DELETE("/api/v1/history/:id", func(c *gin.Context) {
		deleted = c.Param("id") + "?" + c.Query("delete_file")
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	server := httptest.NewServer(router)
	defer server.Close()

	client := newAPIClient(server.URL)
	records, err := client.History(5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "abc", records[0].ID)

	require.NoError(t, client.DeleteHistory("abc", true))
	assert.Equal(t, "abc?true", deleted)
}

func TestAPIClient_Follow(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/events/ws", r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		log := domain.NewLogEvent("Starting")
		done := domain.NewDoneEvent(false, "Network error: boom")
		for _, msg := range []handlers.EventMessage{
			{State: app.ViewState{Busy: true}},
			{Event: &log, State: app.ViewState{Busy: true}},
			{Event: &done, State: app.ViewState{Status: app.StatusFailed}},
		} {
			data, _ := json.Marshal(msg)
			conn.WriteMessage(websocket.TextMessage, data)
		}
		// wait for the client to hang up
		conn.ReadMessage()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []string
	err := newAPIClient(server.URL).Follow(ctx, func(msg handlers.EventMessage) bool {
		if msg.Event == nil {
			got = append(got, "snapshot")
			return true
		}
		got = append(got, string(msg.Event.Type))
		return !msg.Event.IsDone()
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"snapshot", "log", "done"}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate(strings.Repeat("é", 10), 6))
}
