package redis

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultMaxTxRetries = 16

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
	maxTxRetries   int
	logger         *slog.Logger
}

func NewRepo(rc *redis.Client, expireDuration time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
		maxTxRetries:   defaultMaxTxRetries,
		logger:         logger,
	}
}

func (r repo) getRoomKey(roomId, name string) string {
	return "room:" + roomId + ":" + name
}
