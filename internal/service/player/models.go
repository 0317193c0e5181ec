package player

import "github.com/sharetube/jukebox/internal/repository/room"

const (
	MessagePlayerSync = "PLAYER_SYNC"

	SyncSkip  = "skip"
	SyncPause = "pause"
	SyncPlay  = "play"
)

type Song struct {
	ExternalId  string `json:"external_id"`
	Title       string `json:"title"`
	RequestedBy string `json:"requested_by"`
	RequestedAt int64  `json:"requested_at"`
}

type Player struct {
	CurrentIndex int  `json:"current_index"`
	IsPlaying    bool `json:"is_playing"`
	IsStarted    bool `json:"is_started"`
}

type RoomState struct {
	Player      Player `json:"player"`
	Playlist    []Song `json:"playlist"`
	CurrentSong *Song  `json:"current_song"`
}

// SyncMessage tells every client of a room how to change its local player.
type SyncMessage struct {
	Message    string `json:"message"`
	ExternalId string `json:"external_id,omitempty"`
}

func songFromRepo(s room.Song) Song {
	return Song{
		ExternalId:  s.ExternalId,
		Title:       s.Title,
		RequestedBy: s.RequestedBy,
		RequestedAt: s.RequestedAt,
	}
}

func playerFromRepo(p room.Player) Player {
	return Player{
		CurrentIndex: p.CurrentIndex,
		IsPlaying:    p.IsPlaying,
		IsStarted:    p.IsStarted,
	}
}
