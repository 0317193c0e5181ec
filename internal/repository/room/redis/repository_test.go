package redis

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	return NewRepo(rc, time.Hour, slog.Default()), s
}

func TestPlayer(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	player, err := r.GetPlayer(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, room.Player{}, player, "missing player must read as default")

	require.NoError(t, r.SetPlayer(ctx, &room.SetPlayerParams{
		CurrentIndex: 2,
		IsPlaying:    true,
		IsStarted:    true,
		RoomId:       "lobby",
	}))

	player, err = r.GetPlayer(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, room.Player{CurrentIndex: 2, IsPlaying: true, IsStarted: true}, player)
	assert.Equal(t, "2", s.HGet("room:lobby:player", "current_index"))
	assert.Equal(t, time.Hour, s.TTL("room:lobby:player"))

	other, err := r.GetPlayer(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, room.Player{}, other, "rooms must be isolated")
}

func TestUpdatePlayer(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		_, err := r.AppendSong(ctx, &room.AppendSongParams{Song: room.Song{ExternalId: title, Title: title}, RoomId: "lobby"})
		require.NoError(t, err)
	}

	res, err := r.UpdatePlayer(ctx, "lobby", func(player *room.Player, playlistLength int) error {
		assert.Equal(t, 3, playlistLength)
		player.CurrentIndex = 1
		player.IsStarted = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.PlaylistLength)
	assert.Equal(t, room.Player{CurrentIndex: 1, IsStarted: true}, res.Player)

	stored, err := r.GetPlayer(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, res.Player, stored)
}

func TestUpdatePlayerAbort(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	abort := assert.AnError

	_, err := r.UpdatePlayer(ctx, "lobby", func(player *room.Player, _ int) error {
		player.IsPlaying = true
		return abort
	})
	assert.ErrorIs(t, err, abort)

	stored, err := r.GetPlayer(ctx, "lobby")
	require.NoError(t, err)
	assert.False(t, stored.IsPlaying, "aborted update must not be written")
}

func TestUpdatePlayerConcurrent(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.UpdatePlayer(ctx, "lobby", func(player *room.Player, _ int) error {
				player.CurrentIndex++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := r.GetPlayer(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, 8, stored.CurrentIndex, "no increment may be lost")
}

func TestPlaylist(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	songs, err := r.GetPlaylist(ctx, "lobby")
	require.NoError(t, err)
	assert.Empty(t, songs)

	a := room.Song{ExternalId: "aaaaaaaaaaa", Title: "A", RequestedBy: "alice", RequestedAt: 1}
	b := room.Song{ExternalId: "bbbbbbbbbbb", Title: "B", RequestedBy: "bob", RequestedAt: 2}

	length, err := r.AppendSong(ctx, &room.AppendSongParams{Song: a, Limit: 2, RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 1, length)
	length, err = r.AppendSong(ctx, &room.AppendSongParams{Song: b, Limit: 2, RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 2, length)

	_, err = r.AppendSong(ctx, &room.AppendSongParams{Song: a, Limit: 2, RoomId: "lobby"})
	assert.ErrorIs(t, err, room.ErrPlaylistLimitReached)

	songs, err = r.GetPlaylist(ctx, "lobby")
	require.NoError(t, err)
	assert.Equal(t, []room.Song{a, b}, songs)

	song, err := r.GetSong(ctx, &room.GetSongParams{Index: 1, RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, b, song)

	_, err = r.GetSong(ctx, &room.GetSongParams{Index: 5, RoomId: "lobby"})
	assert.ErrorIs(t, err, room.ErrSongNotFound)
}

func TestMembers(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetMemberRole(ctx, &room.GetMemberParams{Username: "alice", RoomId: "lobby"})
	assert.ErrorIs(t, err, room.ErrMemberNotFound)

	require.NoError(t, r.SetMember(ctx, &room.SetMemberParams{Username: "alice", Role: room.RoleModerator, RoomId: "lobby"}))
	role, err := r.GetMemberRole(ctx, &room.GetMemberParams{Username: "alice", RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, room.RoleModerator, role)

	ok, err := r.ClaimOwner(ctx, &room.ClaimOwnerParams{Username: "alice", RoomId: "lobby"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.ClaimOwner(ctx, &room.ClaimOwnerParams{Username: "bob", RoomId: "lobby"})
	require.NoError(t, err)
	assert.False(t, ok, "second claim must fail")
}

func TestConns(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()
	now := time.UnixMilli(1700000000000)
	ttl := time.Minute

	count, err := r.AddConn(ctx, &room.AddConnParams{ConnId: "c1", Now: now, ExpiresAt: now.Add(ttl), RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = r.AddConn(ctx, &room.AddConnParams{ConnId: "c2", Now: now, ExpiresAt: now.Add(ttl), RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, time.Hour, s.TTL("room:lobby:conns"))

	count, err = r.RemoveConn(ctx, &room.RemoveConnParams{ConnId: "c1", RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	count, err = r.RemoveConn(ctx, &room.RemoveConnParams{ConnId: "c2", RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestConnsPastDeadlineAreDropped(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()
	now := time.UnixMilli(1700000000000)
	ttl := time.Minute

	// c1 and c2 belonged to an instance that went away without removing them
	for _, connId := range []string{"c1", "c2"} {
		_, err := r.AddConn(ctx, &room.AddConnParams{ConnId: connId, Now: now, ExpiresAt: now.Add(ttl), RoomId: "lobby"})
		require.NoError(t, err)
	}

	// c2 keeps sending heartbeats
	later := now.Add(ttl - time.Second)
	require.NoError(t, r.RefreshConn(ctx, &room.RefreshConnParams{ConnId: "c2", ExpiresAt: later.Add(ttl), RoomId: "lobby"}))

	count, err := r.AddConn(ctx, &room.AddConnParams{ConnId: "c3", Now: now.Add(ttl + time.Second), ExpiresAt: now.Add(2 * ttl), RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	members, err := s.ZMembers("room:lobby:conns")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c2", "c3"}, members)

	count, err = r.AddConn(ctx, &room.AddConnParams{ConnId: "c4", Now: now.Add(3 * ttl), ExpiresAt: now.Add(4 * ttl), RoomId: "lobby"})
	require.NoError(t, err)
	assert.Equal(t, 1, count, "only the new connection is live")
}
