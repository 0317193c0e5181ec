package player

import (
	"context"
	"errors"
	"fmt"

	"github.com/sharetube/jukebox/internal/repository/room"
)

type ControlParams struct {
	SenderName string
	RoomId     string
}

func (s service) Initialize(ctx context.Context, roomId string) error {
	if err := s.roomRepo.SetPlayer(ctx, &room.SetPlayerParams{
		CurrentIndex: 0,
		IsPlaying:    false,
		IsStarted:    false,
		RoomId:       roomId,
	}); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

// Skip advances to the next song on a moderator's request. It does nothing unless
// the player was started.
func (s service) Skip(ctx context.Context, params *ControlParams) error {
	if ok, err := s.checkIfModerator(ctx, params.RoomId, params.SenderName); err != nil || !ok {
		return err
	}

	return s.skip(ctx, params.RoomId, true)
}

// EndSong advances to the next song when a client finished playing one. Any client
// may report it.
func (s service) EndSong(ctx context.Context, roomId string) error {
	return s.skip(ctx, roomId, false)
}

func (s service) skip(ctx context.Context, roomId string, requireStarted bool) error {
	res, err := s.roomRepo.UpdatePlayer(ctx, roomId, func(player *room.Player, playlistLength int) error {
		if requireStarted && !player.IsStarted {
			return errPreconditionUnmet
		}

		player.CurrentIndex = nextIndex(currentIndex(player.CurrentIndex, playlistLength), playlistLength)
		return nil
	})
	if err != nil {
		if errors.Is(err, errPreconditionUnmet) {
			return nil
		}

		return fmt.Errorf("failed to update player: %w", err)
	}

	if res.Player.IsPlaying && res.PlaylistLength > 0 {
		return s.syncSong(ctx, roomId, res.Player.CurrentIndex)
	}

	return nil
}

func (s service) Pause(ctx context.Context, params *ControlParams) error {
	return s.setPlaying(ctx, params, false)
}

func (s service) Play(ctx context.Context, params *ControlParams) error {
	return s.setPlaying(ctx, params, true)
}

func (s service) setPlaying(ctx context.Context, params *ControlParams, isPlaying bool) error {
	if ok, err := s.checkIfModerator(ctx, params.RoomId, params.SenderName); err != nil || !ok {
		return err
	}

	if _, err := s.roomRepo.UpdatePlayer(ctx, params.RoomId, func(player *room.Player, _ int) error {
		if !player.IsStarted {
			return errPreconditionUnmet
		}

		player.IsPlaying = isPlaying
		return nil
	}); err != nil {
		if errors.Is(err, errPreconditionUnmet) {
			return nil
		}

		return fmt.Errorf("failed to update player: %w", err)
	}

	message := SyncPause
	if isPlaying {
		message = SyncPlay
	}
	s.publishSync(ctx, params.RoomId, SyncMessage{Message: message})

	return nil
}

// StartPlayer activates the player. Clients are pointed at the current song when
// there is one.
func (s service) StartPlayer(ctx context.Context, params *ControlParams) error {
	if ok, err := s.checkIfModerator(ctx, params.RoomId, params.SenderName); err != nil || !ok {
		return err
	}

	res, err := s.roomRepo.UpdatePlayer(ctx, params.RoomId, func(player *room.Player, playlistLength int) error {
		player.IsStarted = true
		player.IsPlaying = true
		player.CurrentIndex = currentIndex(player.CurrentIndex, playlistLength)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}

	if res.PlaylistLength > 0 {
		return s.syncSong(ctx, params.RoomId, res.Player.CurrentIndex)
	}

	return nil
}

func (s service) syncSong(ctx context.Context, roomId string, index int) error {
	song, err := s.roomRepo.GetSong(ctx, &room.GetSongParams{
		Index:  index,
		RoomId: roomId,
	})
	if err != nil {
		return fmt.Errorf("failed to get song: %w", err)
	}

	s.publishSync(ctx, roomId, SyncMessage{
		Message:    SyncSkip,
		ExternalId: song.ExternalId,
	})

	return nil
}

// publishSync only logs failures, callers never see them.
func (s service) publishSync(ctx context.Context, roomId string, msg SyncMessage) {
	if err := s.broadcaster.Publish(ctx, roomId, MessagePlayerSync, msg); err != nil {
		s.logger.WarnContext(ctx, "failed to publish sync message", "message", msg.Message, "error", err)
	}
}
