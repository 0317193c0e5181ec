package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
)

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}

// watch runs fn as an optimistic transaction over keys, retrying while another
// client modifies a watched key between read and EXEC.
func (r repo) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < r.maxTxRetries; i++ {
		err := r.rc.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}

		r.logger.DebugContext(ctx, "transaction conflict, retrying", "keys", keys, "attempt", i+1)
	}

	return fmt.Errorf("failed to watch %v: %w", keys, room.ErrTxRetriesExceeded)
}
