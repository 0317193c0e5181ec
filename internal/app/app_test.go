package app

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/pkg/validator"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Host:                 "0.0.0.0",
		Port:                 8080,
		LogLevel:             "info",
		PlaylistLimit:        1,
		UpcomingCount:        5,
		Moderators:           []string{"dj"},
		RoomExp:              time.Hour,
		ConnTTL:              time.Minute,
		YouTubeLookupTimeout: time.Second,
		RedisHost:            "localhost",
		RedisPort:            6379,
	}
}

func TestAppConfigValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Port = 0
	cfg.LogLevel = "verbose"
	cfg.Moderators = []string{""}

	err := cfg.Validate()
	require.Error(t, err)

	var validationError validator.ValidationError
	require.ErrorAs(t, err, &validationError)
	assert.Contains(t, err.Error(), "port must be at least 1")
	assert.Contains(t, err.Error(), "log_level must be one of")
	assert.Contains(t, err.Error(), "moderators[0] is required")
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	_, err = newLogger("loud")
	assert.Error(t, err)
}

type fakeCatalog struct{}

func (fakeCatalog) GetByID(_ context.Context, id string) (ytvideodata.Result, error) {
	return ytvideodata.Result{Items: []ytvideodata.VideoData{{ID: id, Title: "Title " + id}}}, nil
}

type envelope struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

func readType(t *testing.T, ws *websocket.Conn, msgType string) map[string]any {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg envelope
		require.NoError(t, ws.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg.Payload
		}
	}
}

func TestApplication(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	app := newApplication(validConfig(), rc, fakeCatalog{}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- app.subscribe(ctx, ready) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
	<-ready

	server := httptest.NewServer(app.handler)
	t.Cleanup(server.Close)

	join := func(username string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/rooms/party?username=" + username
		ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		resp.Body.Close()
		t.Cleanup(func() { ws.Close() })
		return ws
	}
	say := func(ws *websocket.Conn, text string) {
		require.NoError(t, ws.WriteJSON(map[string]any{
			"type":    "CHAT_MESSAGE",
			"payload": map[string]string{"text": text},
		}))
	}

	owner := join("owner")
	assert.Equal(t, "moderator", readType(t, owner, "JOINED_ROOM")["role"])

	dj := join("dj")
	assert.Equal(t, "moderator", readType(t, dj, "JOINED_ROOM")["role"], "configured moderators moderate every room")

	guest := join("guest")
	assert.Equal(t, "member", readType(t, guest, "JOINED_ROOM")["role"])

	say(guest, "!request dQw4w9WgXcQ")
	assert.Equal(t, "Your song has been added to the playlist!", readType(t, guest, "CHAT_REPLY")["text"])

	say(guest, "!request 9bZkp7q19f0")
	assert.Equal(t, "The playlist is full.", readType(t, guest, "CHAT_REPLY")["text"])

	say(dj, "/startplayer")
	sync := readType(t, owner, "PLAYER_SYNC")
	assert.Equal(t, "skip", sync["message"])
	assert.Equal(t, "dQw4w9WgXcQ", sync["external_id"])

	assert.Equal(t, "skip", readType(t, guest, "PLAYER_SYNC")["message"])

	say(dj, "/pause")
	assert.Equal(t, map[string]any{"message": "pause"}, readType(t, guest, "PLAYER_SYNC"))
}
