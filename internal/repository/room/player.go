package room

type Player struct {
	CurrentIndex int  `redis:"current_index"`
	IsPlaying    bool `redis:"is_playing"`
	IsStarted    bool `redis:"is_started"`
}

type SetPlayerParams struct {
	CurrentIndex int
	IsPlaying    bool
	IsStarted    bool
	RoomId       string
}

// UpdatePlayerFunc mutates player in place. playlistLength is read in the same
// transaction. A returned error aborts the update and is passed to the caller as is.
type UpdatePlayerFunc func(player *Player, playlistLength int) error

type UpdatePlayerResult struct {
	Player         Player
	PlaylistLength int
}
