package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
)

func (r repo) getPlayerKey(roomId string) string {
	return r.getRoomKey(roomId, "player")
}

// GetPlayer returns the zero player when none was stored yet.
func (r repo) GetPlayer(ctx context.Context, roomId string) (room.Player, error) {
	playerKey := r.getPlayerKey(roomId)
	var player room.Player
	if err := r.rc.HGetAll(ctx, playerKey).Scan(&player); err != nil {
		return room.Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	r.rc.Expire(ctx, playerKey, r.expireDuration)

	return player, nil
}

func (r repo) SetPlayer(ctx context.Context, params *room.SetPlayerParams) error {
	pipe := r.rc.TxPipeline()

	player := room.Player{
		CurrentIndex: params.CurrentIndex,
		IsPlaying:    params.IsPlaying,
		IsStarted:    params.IsStarted,
	}
	playerKey := r.getPlayerKey(params.RoomId)
	pipe.HSet(ctx, playerKey, player)
	pipe.Expire(ctx, playerKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (r repo) UpdatePlayer(ctx context.Context, roomId string, fn room.UpdatePlayerFunc) (room.UpdatePlayerResult, error) {
	playerKey := r.getPlayerKey(roomId)
	playlistKey := r.getPlaylistKey(roomId)

	var result room.UpdatePlayerResult
	txf := func(tx *redis.Tx) error {
		var player room.Player
		if err := tx.HGetAll(ctx, playerKey).Scan(&player); err != nil {
			return fmt.Errorf("failed to get player: %w", err)
		}

		playlistLength, err := tx.LLen(ctx, playlistKey).Result()
		if err != nil {
			return fmt.Errorf("failed to get playlist length: %w", err)
		}

		if err := fn(&player, int(playlistLength)); err != nil {
			return err
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, playerKey, player)
			pipe.Expire(ctx, playerKey, r.expireDuration)
			return nil
		}); err != nil {
			return err
		}

		result = room.UpdatePlayerResult{
			Player:         player,
			PlaylistLength: int(playlistLength),
		}
		return nil
	}

	if err := r.watch(ctx, txf, playerKey, playlistKey); err != nil {
		return room.UpdatePlayerResult{}, err
	}

	return result, nil
}
