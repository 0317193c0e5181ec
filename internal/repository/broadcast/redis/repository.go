package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "room:"
	channelSuffix  = ":sync"
	channelPattern = channelPrefix + "*" + channelSuffix
)

type message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// DeliverFunc receives every message published to a room, already encoded as the
// websocket envelope.
type DeliverFunc func(ctx context.Context, roomId string, data []byte)

type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
	}
}

func (r repo) getChannel(roomId string) string {
	return channelPrefix + roomId + channelSuffix
}

func (r repo) Publish(ctx context.Context, roomId string, msgType string, payload any) error {
	data, err := json.Marshal(message{Type: msgType, Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	if err := r.rc.Publish(ctx, r.getChannel(roomId), data).Err(); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

// Subscribe delivers messages of every room until ctx is done. ready, when not
// nil, is closed once the subscription is active.
func (r repo) Subscribe(ctx context.Context, deliver DeliverFunc, ready chan<- struct{}) error {
	sub := r.rc.PSubscribe(ctx, channelPattern)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			roomId := strings.TrimSuffix(strings.TrimPrefix(msg.Channel, channelPrefix), channelSuffix)
			r.logger.DebugContext(ctx, "sync message received", "room_id", roomId)
			deliver(ctx, roomId, []byte(msg.Payload))
		}
	}
}
