package controller

import (
	"context"
)

// Deliver queues an encoded broadcast on every local connection of the room. It
// never waits on a client.
func (c controller) Deliver(ctx context.Context, roomId string, data []byte) {
	for _, conn := range c.connRepo.GetRoomConns(roomId) {
		if err := conn.Send(data); err != nil {
			c.logger.WarnContext(ctx, "failed to deliver message",
				"room_id", roomId,
				"conn_id", conn.Id,
				"error", err,
			)
		}
	}
}
