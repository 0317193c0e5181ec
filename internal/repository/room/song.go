package room

type Song struct {
	ExternalId  string `json:"external_id"`
	Title       string `json:"title"`
	RequestedBy string `json:"requested_by"`
	RequestedAt int64  `json:"requested_at"`
}

type AppendSongParams struct {
	Song   Song
	Limit  int
	RoomId string
}

type GetSongParams struct {
	Index  int
	RoomId string
}
