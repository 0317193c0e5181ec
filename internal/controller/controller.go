package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sharetube/jukebox/internal/command"
	"github.com/sharetube/jukebox/internal/repository/connection"
	"github.com/sharetube/jukebox/internal/service/player"
	"github.com/sharetube/jukebox/pkg/validator"
	"github.com/sharetube/jukebox/pkg/wsrouter"
)

type iPlayerService interface {
	ConnectMember(context.Context, *player.ConnectMemberParams) (player.ConnectMemberResponse, error)
	DisconnectMember(context.Context, *player.DisconnectMemberParams) error
	KeepAlive(context.Context, *player.KeepAliveParams) error
	GetRoomState(context.Context, string) (player.RoomState, error)
}

type iDispatcher interface {
	Dispatch(context.Context, *command.Event) (*command.Reply, error)
}

type iBroadcaster interface {
	Publish(ctx context.Context, roomId string, msgType string, payload any) error
}

type iConnRepo interface {
	Add(*connection.Conn) error
	Remove(string) error
	GetConn(string) (*connection.Conn, error)
	GetRoomConns(string) []*connection.Conn
}

type controller struct {
	playerService iPlayerService
	dispatcher    iDispatcher
	broadcaster   iBroadcaster
	connRepo      iConnRepo
	upgrader      websocket.Upgrader
	wsmux         *wsrouter.WSRouter
	validate      *validator.Validator
	logger        *slog.Logger
}

func NewController(
	playerService iPlayerService,
	dispatcher iDispatcher,
	broadcaster iBroadcaster,
	connRepo iConnRepo,
	logger *slog.Logger,
) *controller {
	c := &controller{
		playerService: playerService,
		dispatcher:    dispatcher,
		broadcaster:   broadcaster,
		connRepo:      connRepo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.NewValidator(),
		logger:   logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
