package room

import "errors"

var (
	ErrSongNotFound         = errors.New("song not found")
	ErrMemberNotFound       = errors.New("member not found")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
	ErrTxRetriesExceeded    = errors.New("transaction retries exceeded")
)
