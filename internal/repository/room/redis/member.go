package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
)

func (r repo) getMembersKey(roomId string) string {
	return r.getRoomKey(roomId, "members")
}

func (r repo) getOwnerKey(roomId string) string {
	return r.getRoomKey(roomId, "owner")
}

func (r repo) getConnsKey(roomId string) string {
	return r.getRoomKey(roomId, "conns")
}

func (r repo) SetMember(ctx context.Context, params *room.SetMemberParams) error {
	pipe := r.rc.TxPipeline()

	membersKey := r.getMembersKey(params.RoomId)
	pipe.HSet(ctx, membersKey, params.Username, string(params.Role))
	pipe.Expire(ctx, membersKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set member: %w", err)
	}

	return nil
}

func (r repo) GetMemberRole(ctx context.Context, params *room.GetMemberParams) (room.Role, error) {
	membersKey := r.getMembersKey(params.RoomId)
	role, err := r.rc.HGet(ctx, membersKey, params.Username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", room.ErrMemberNotFound
		}

		return "", fmt.Errorf("failed to get member role: %w", err)
	}

	r.rc.Expire(ctx, membersKey, r.expireDuration)

	return room.Role(role), nil
}

// ClaimOwner makes the username the room owner unless the room already has one.
// It reports whether the claim succeeded.
func (r repo) ClaimOwner(ctx context.Context, params *room.ClaimOwnerParams) (bool, error) {
	ownerKey := r.getOwnerKey(params.RoomId)
	ok, err := r.rc.SetNX(ctx, ownerKey, params.Username, r.expireDuration).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim owner: %w", err)
	}

	if !ok {
		r.rc.Expire(ctx, ownerKey, r.expireDuration)
	}

	return ok, nil
}

// AddConn registers an online connection and returns how many live ones the room
// has now. Connections are scored by their deadline, so ids left behind by a
// crashed instance stop counting once they miss it.
func (r repo) AddConn(ctx context.Context, params *room.AddConnParams) (int, error) {
	pipe := r.rc.TxPipeline()

	connsKey := r.getConnsKey(params.RoomId)
	pipe.ZRemRangeByScore(ctx, connsKey, "-inf", "("+strconv.FormatInt(params.Now.UnixMilli(), 10))
	pipe.ZAdd(ctx, connsKey, redis.Z{
		Score:  float64(params.ExpiresAt.UnixMilli()),
		Member: params.ConnId,
	})
	count := pipe.ZCard(ctx, connsKey)
	pipe.Expire(ctx, connsKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return 0, fmt.Errorf("failed to add conn: %w", err)
	}

	return int(count.Val()), nil
}

// RefreshConn moves the connection's deadline forward.
func (r repo) RefreshConn(ctx context.Context, params *room.RefreshConnParams) error {
	pipe := r.rc.TxPipeline()

	connsKey := r.getConnsKey(params.RoomId)
	pipe.ZAdd(ctx, connsKey, redis.Z{
		Score:  float64(params.ExpiresAt.UnixMilli()),
		Member: params.ConnId,
	})
	pipe.Expire(ctx, connsKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to refresh conn: %w", err)
	}

	return nil
}

// RemoveConn unregisters an online connection and returns how many are left.
func (r repo) RemoveConn(ctx context.Context, params *room.RemoveConnParams) (int, error) {
	pipe := r.rc.TxPipeline()

	connsKey := r.getConnsKey(params.RoomId)
	pipe.ZRem(ctx, connsKey, params.ConnId)
	count := pipe.ZCard(ctx, connsKey)

	if err := r.executePipe(ctx, pipe); err != nil {
		return 0, fmt.Errorf("failed to remove conn: %w", err)
	}

	return int(count.Val()), nil
}
