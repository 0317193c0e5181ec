package player

import (
	"context"
	"fmt"
)

func (s service) GetRoomState(ctx context.Context, roomId string) (RoomState, error) {
	player, err := s.roomRepo.GetPlayer(ctx, roomId)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get player: %w", err)
	}

	playlist, err := s.roomRepo.GetPlaylist(ctx, roomId)
	if err != nil {
		return RoomState{}, fmt.Errorf("failed to get playlist: %w", err)
	}

	state := RoomState{
		Player:   playerFromRepo(player),
		Playlist: make([]Song, 0, len(playlist)),
	}
	for _, song := range playlist {
		state.Playlist = append(state.Playlist, songFromRepo(song))
	}

	if player.IsStarted && player.IsPlaying && len(playlist) > 0 {
		song := state.Playlist[currentIndex(player.CurrentIndex, len(playlist))]
		state.CurrentSong = &song
	}

	return state, nil
}
