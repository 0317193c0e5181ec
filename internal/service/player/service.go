package player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sharetube/jukebox/internal/repository/room"
	"github.com/sharetube/jukebox/pkg/ytvideodata"
)

var (
	ErrSongNotFound         = errors.New("song not found")
	ErrLookupFailed         = errors.New("song lookup failed")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
)

// errPreconditionUnmet aborts a player update without writing it.
var errPreconditionUnmet = errors.New("precondition unmet")

type iRoomRepo interface {
	// player
	GetPlayer(context.Context, string) (room.Player, error)
	SetPlayer(context.Context, *room.SetPlayerParams) error
	UpdatePlayer(context.Context, string, room.UpdatePlayerFunc) (room.UpdatePlayerResult, error)
	// playlist
	GetPlaylist(context.Context, string) ([]room.Song, error)
	GetSong(context.Context, *room.GetSongParams) (room.Song, error)
	AppendSong(context.Context, *room.AppendSongParams) (int, error)
	// member
	SetMember(context.Context, *room.SetMemberParams) error
	GetMemberRole(context.Context, *room.GetMemberParams) (room.Role, error)
	ClaimOwner(context.Context, *room.ClaimOwnerParams) (bool, error)
	AddConn(context.Context, *room.AddConnParams) (int, error)
	RefreshConn(context.Context, *room.RefreshConnParams) error
	RemoveConn(context.Context, *room.RemoveConnParams) (int, error)
}

type iCatalog interface {
	GetByID(context.Context, string) (ytvideodata.Result, error)
}

type iBroadcaster interface {
	Publish(ctx context.Context, roomId string, msgType string, payload any) error
}

type Config struct {
	// PlaylistLimit caps the playlist length, 0 disables the cap.
	PlaylistLimit int
	// Moderators are usernames that moderate every room.
	Moderators []string
	// ConnTTL is how long a connection counts as live without a heartbeat.
	ConnTTL time.Duration
}

const defaultConnTTL = time.Minute

type service struct {
	roomRepo      iRoomRepo
	catalog       iCatalog
	broadcaster   iBroadcaster
	playlistLimit int
	moderators    map[string]struct{}
	connTTL       time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

func NewService(roomRepo iRoomRepo, catalog iCatalog, broadcaster iBroadcaster, cfg *Config, logger *slog.Logger) *service {
	moderators := make(map[string]struct{}, len(cfg.Moderators))
	for _, username := range cfg.Moderators {
		moderators[username] = struct{}{}
	}

	connTTL := cfg.ConnTTL
	if connTTL <= 0 {
		connTTL = defaultConnTTL
	}

	return &service{
		roomRepo:      roomRepo,
		catalog:       catalog,
		broadcaster:   broadcaster,
		playlistLimit: cfg.PlaylistLimit,
		moderators:    moderators,
		connTTL:       connTTL,
		now:           time.Now,
		logger:        logger,
	}
}
