package controller

import "context"

type contextKey int

const (
	roomIdCtxKey contextKey = iota
	usernameCtxKey
	connIdCtxKey
)

func (c controller) getRoomIdFromCtx(ctx context.Context) string {
	roomId, ok := ctx.Value(roomIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomId
}

func (c controller) getUsernameFromCtx(ctx context.Context) string {
	username, ok := ctx.Value(usernameCtxKey).(string)
	if !ok {
		return ""
	}

	return username
}

func (c controller) getConnIdFromCtx(ctx context.Context) string {
	connId, ok := ctx.Value(connIdCtxKey).(string)
	if !ok {
		return ""
	}

	return connId
}
