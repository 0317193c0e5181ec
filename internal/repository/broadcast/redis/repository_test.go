package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivered struct {
	roomId string
	data   []byte
}

func TestPublishSubscribe(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer rc.Close()

	r := NewRepo(rc, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan delivered, 1)
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- r.Subscribe(ctx, func(_ context.Context, roomId string, data []byte) {
			got <- delivered{roomId: roomId, data: data}
		}, ready)
	}()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription was not ready")
	}

	require.NoError(t, r.Publish(ctx, "lobby", "PLAYER_SYNC", map[string]string{"message": "pause"}))

	select {
	case d := <-got:
		assert.Equal(t, "lobby", d.roomId)
		var msg struct {
			Type    string            `json:"type"`
			Payload map[string]string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(d.data, &msg))
		assert.Equal(t, "PLAYER_SYNC", msg.Type)
		assert.Equal(t, "pause", msg.Payload["message"])
	case <-time.After(5 * time.Second):
		t.Fatal("message was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
