package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
)

func (r repo) getPlaylistKey(roomId string) string {
	return r.getRoomKey(roomId, "playlist")
}

func (r repo) GetPlaylist(ctx context.Context, roomId string) ([]room.Song, error) {
	playlistKey := r.getPlaylistKey(roomId)
	values, err := r.rc.LRange(ctx, playlistKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	r.rc.Expire(ctx, playlistKey, r.expireDuration)

	songs := make([]room.Song, 0, len(values))
	for _, value := range values {
		var song room.Song
		if err := json.Unmarshal([]byte(value), &song); err != nil {
			return nil, fmt.Errorf("failed to decode song: %w", err)
		}

		songs = append(songs, song)
	}

	return songs, nil
}

func (r repo) GetSong(ctx context.Context, params *room.GetSongParams) (room.Song, error) {
	value, err := r.rc.LIndex(ctx, r.getPlaylistKey(params.RoomId), int64(params.Index)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return room.Song{}, room.ErrSongNotFound
		}

		return room.Song{}, fmt.Errorf("failed to get song: %w", err)
	}

	var song room.Song
	if err := json.Unmarshal([]byte(value), &song); err != nil {
		return room.Song{}, fmt.Errorf("failed to decode song: %w", err)
	}

	return song, nil
}

// AppendSong adds the song to the end of the playlist and returns the new length.
// A positive Limit caps the playlist length.
func (r repo) AppendSong(ctx context.Context, params *room.AppendSongParams) (int, error) {
	value, err := json.Marshal(params.Song)
	if err != nil {
		return 0, fmt.Errorf("failed to encode song: %w", err)
	}

	playlistKey := r.getPlaylistKey(params.RoomId)

	var length int64
	txf := func(tx *redis.Tx) error {
		current, err := tx.LLen(ctx, playlistKey).Result()
		if err != nil {
			return fmt.Errorf("failed to get playlist length: %w", err)
		}

		if params.Limit > 0 && current >= int64(params.Limit) {
			return room.ErrPlaylistLimitReached
		}

		var push *redis.IntCmd
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			push = pipe.RPush(ctx, playlistKey, value)
			pipe.Expire(ctx, playlistKey, r.expireDuration)
			return nil
		}); err != nil {
			return err
		}

		length = push.Val()
		return nil
	}

	if err := r.watch(ctx, txf, playlistKey); err != nil {
		return 0, err
	}

	return int(length), nil
}
