package player

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/jukebox/internal/repository/room"
	roomRedis "github.com/sharetube/jukebox/internal/repository/room/redis"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
	"github.com/stretchr/testify/require"
)

const testRoom = "lobby"

type fakeCatalog struct {
	titles map[string]string
	err    error
	calls  int
}

func (c *fakeCatalog) GetByID(_ context.Context, id string) (ytvideodata.Result, error) {
	c.calls++
	if c.err != nil {
		return ytvideodata.Result{}, c.err
	}

	title, ok := c.titles[id]
	if !ok {
		return ytvideodata.Result{}, nil
	}

	return ytvideodata.Result{Items: []ytvideodata.VideoData{{ID: id, Title: title}}}, nil
}

type published struct {
	RoomId  string
	Type    string
	Payload any
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []published
}

func (b *fakeBroadcaster) Publish(_ context.Context, roomId string, msgType string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append(b.messages, published{RoomId: roomId, Type: msgType, Payload: payload})
	return nil
}

func (b *fakeBroadcaster) syncs() []SyncMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]SyncMessage, 0, len(b.messages))
	for _, m := range b.messages {
		if msg, ok := m.Payload.(SyncMessage); ok {
			out = append(out, msg)
		}
	}

	return out
}

func (b *fakeBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = nil
}

type testEnv struct {
	service     *service
	repo        iRoomRepo
	catalog     *fakeCatalog
	broadcaster *fakeBroadcaster
}

func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()

	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { rc.Close() })

	if cfg == nil {
		cfg = &Config{}
	}

	repo := roomRedis.NewRepo(rc, time.Hour, slog.Default())
	catalog := &fakeCatalog{titles: map[string]string{}}
	broadcaster := &fakeBroadcaster{}
	svc := NewService(repo, catalog, broadcaster, cfg, slog.Default())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	return &testEnv{
		service:     svc,
		repo:        repo,
		catalog:     catalog,
		broadcaster: broadcaster,
	}
}

// addSongs appends songs whose external id and title are both the given name.
func (e *testEnv) addSongs(t *testing.T, names ...string) {
	t.Helper()

	for _, name := range names {
		_, err := e.repo.AppendSong(context.Background(), &room.AppendSongParams{
			Song:   room.Song{ExternalId: name, Title: name, RequestedBy: "tester"},
			RoomId: testRoom,
		})
		require.NoError(t, err)
	}
}

func (e *testEnv) setPlayer(t *testing.T, p room.Player) {
	t.Helper()

	require.NoError(t, e.repo.SetPlayer(context.Background(), &room.SetPlayerParams{
		CurrentIndex: p.CurrentIndex,
		IsPlaying:    p.IsPlaying,
		IsStarted:    p.IsStarted,
		RoomId:       testRoom,
	}))
}

func (e *testEnv) player(t *testing.T) room.Player {
	t.Helper()

	p, err := e.repo.GetPlayer(context.Background(), testRoom)
	require.NoError(t, err)
	return p
}

func (e *testEnv) addMember(t *testing.T, username string, role room.Role) {
	t.Helper()

	require.NoError(t, e.repo.SetMember(context.Background(), &room.SetMemberParams{
		Username: username,
		Role:     role,
		RoomId:   testRoom,
	}))
}

func titles(songs []Song) []string {
	out := make([]string, 0, len(songs))
	for _, s := range songs {
		out = append(out, s.Title)
	}
	return out
}
