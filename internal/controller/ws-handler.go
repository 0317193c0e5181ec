package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sharetube/jukebox/internal/command"
	"github.com/sharetube/jukebox/pkg/validator"
	"github.com/sharetube/jukebox/pkg/wsrouter"
)

const (
	outputJoinedRoom  = "JOINED_ROOM"
	outputChatMessage = "CHAT_MESSAGE"
	outputChatReply   = "CHAT_REPLY"
	outputError       = "ERROR"

	// replyUsername signs room-wide command replies in the chat.
	replyUsername = "jukebox"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type ChatMessageOutput struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

type ChatReplyOutput struct {
	Text string `json:"text"`
}

type ErrorOutput struct {
	Message string `json:"message"`
}

type EmptyInput struct{}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type ChatMessageInput struct {
	Text string `json:"text" validate:"required,max=500"`
}

// handleChatMessage relays the message to the room before running it as a command,
// so a command's reply follows the message that triggered it.
func (c controller) handleChatMessage(ctx context.Context, _ *websocket.Conn, input ChatMessageInput) error {
	if validationErrors, ok := c.validate.Validate(input); !ok {
		return validator.Join(validationErrors)
	}

	roomId := c.getRoomIdFromCtx(ctx)
	username := c.getUsernameFromCtx(ctx)

	if err := c.broadcaster.Publish(ctx, roomId, outputChatMessage, ChatMessageOutput{
		Username: username,
		Text:     input.Text,
	}); err != nil {
		return fmt.Errorf("failed to publish chat message: %w", err)
	}

	reply, err := c.dispatcher.Dispatch(ctx, &command.Event{
		Category: command.CategoryMessage,
		RoomId:   roomId,
		Sender:   username,
		Text:     input.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch chat message: %w", err)
	}

	return c.deliverReply(ctx, roomId, reply)
}

func (c controller) handleSongEnded(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	roomId := c.getRoomIdFromCtx(ctx)

	reply, err := c.dispatcher.Dispatch(ctx, &command.Event{
		Category: command.CategorySignal,
		RoomId:   roomId,
		Sender:   c.getUsernameFromCtx(ctx),
		Text:     command.SignalSongEnded,
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch song ended: %w", err)
	}

	return c.deliverReply(ctx, roomId, reply)
}

func (c controller) deliverReply(ctx context.Context, roomId string, reply *command.Reply) error {
	if reply == nil {
		return nil
	}

	if reply.To == "" {
		if err := c.broadcaster.Publish(ctx, roomId, outputChatMessage, ChatMessageOutput{
			Username: replyUsername,
			Text:     reply.Text,
		}); err != nil {
			return fmt.Errorf("failed to publish reply: %w", err)
		}

		return nil
	}

	for _, conn := range c.connRepo.GetRoomConns(roomId) {
		if conn.Username != reply.To {
			continue
		}

		if err := conn.WriteJSON(&Output{
			Type:    outputChatReply,
			Payload: ChatReplyOutput{Text: reply.Text},
		}); err != nil {
			c.logger.WarnContext(ctx, "failed to write reply", "conn_id", conn.Id, "error", err)
		}
	}

	return nil
}

// handleWSError tells the sender its message failed. Client mistakes are described,
// anything else is reported as an internal error.
func (c controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	message := "internal error"
	var validationError validator.ValidationError
	switch {
	case errors.Is(err, wsrouter.ErrUnknownMessageType), errors.Is(err, wsrouter.ErrInvalidPayload):
		c.logger.InfoContext(ctx, "invalid websocket message", "error", err)
		message = err.Error()
	case errors.As(err, &validationError):
		c.logger.InfoContext(ctx, "websocket message failed validation", "error", err)
		message = err.Error()
	default:
		c.logger.ErrorContext(ctx, "failed to handle websocket message", "error", err)
	}

	conn, err := c.connRepo.GetConn(c.getConnIdFromCtx(ctx))
	if err != nil {
		c.logger.WarnContext(ctx, "failed to get conn", "error", err)
		return
	}

	if err := conn.WriteJSON(&Output{
		Type:    outputError,
		Payload: ErrorOutput{Message: message},
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write error", "error", err)
	}
}
