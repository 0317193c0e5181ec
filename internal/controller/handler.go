package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/jukebox/internal/command"
	"github.com/sharetube/jukebox/internal/repository/connection"
	"github.com/sharetube/jukebox/internal/repository/room"
	"github.com/sharetube/jukebox/internal/service/player"
	"github.com/sharetube/jukebox/pkg/ctxlogger"
	"github.com/sharetube/jukebox/pkg/rest"
)

type joinRoomInput struct {
	RoomId   string `json:"room_id" validate:"required,max=64"`
	Username string `json:"username" validate:"required,max=32"`
}

type JoinedRoomOutput struct {
	Username  string           `json:"username"`
	Role      room.Role        `json:"role"`
	RoomState player.RoomState `json:"room_state"`
}

func (c controller) joinRoom(w http.ResponseWriter, r *http.Request) {
	input := joinRoomInput{
		RoomId:   chi.URLParam(r, "room-id"),
		Username: r.URL.Query().Get("username"),
	}
	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.logger.DebugContext(r.Context(), "invalid join request", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	ws, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	conn := connection.NewConn(ws, input.RoomId, input.Username)
	defer conn.Close()

	ctx := ctxlogger.AppendCtx(r.Context(), slog.String("room_id", input.RoomId))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("username", input.Username))
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", conn.Id))
	ctx = context.WithValue(ctx, roomIdCtxKey, input.RoomId)
	ctx = context.WithValue(ctx, usernameCtxKey, input.Username)
	ctx = context.WithValue(ctx, connIdCtxKey, conn.Id)

	if err := c.connRepo.Add(conn); err != nil {
		c.logger.WarnContext(ctx, "failed to add conn", "error", err)
		return
	}
	defer c.disconnect(ctx, conn)

	connectMemberResp, err := c.playerService.ConnectMember(ctx, &player.ConnectMemberParams{
		Username: input.Username,
		ConnId:   conn.Id,
		RoomId:   input.RoomId,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to connect member", "error", err)
		return
	}

	if connectMemberResp.IsActivated {
		c.logger.InfoContext(ctx, "room activated")
		if _, err := c.dispatcher.Dispatch(ctx, &command.Event{
			Category: command.CategoryStartup,
			RoomId:   input.RoomId,
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to start room", "error", err)
			return
		}
	}

	roomState, err := c.playerService.GetRoomState(ctx, input.RoomId)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to get room state", "error", err)
		return
	}

	if err := conn.WriteJSON(&Output{
		Type: outputJoinedRoom,
		Payload: JoinedRoomOutput{
			Username:  input.Username,
			Role:      connectMemberResp.Role,
			RoomState: roomState,
		},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write json", "error", err)
		return
	}

	if err := c.wsmux.ServeConn(ctx, ws); err != nil {
		c.logger.InfoContext(ctx, "conn closed", "error", err)
	}
}

// disconnect runs after the request context may be gone, so it detaches from it.
func (c controller) disconnect(ctx context.Context, conn *connection.Conn) {
	ctx = context.WithoutCancel(ctx)

	if err := c.connRepo.Remove(conn.Id); err != nil {
		c.logger.WarnContext(ctx, "failed to remove conn", "error", err)
	}

	if err := c.playerService.DisconnectMember(ctx, &player.DisconnectMemberParams{
		ConnId: conn.Id,
		RoomId: conn.RoomId,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect member", "error", err)
	}
}
