package player

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sharetube/jukebox/internal/repository/room"
)

var (
	youtubeURLRegex = regexp.MustCompile(`(?i)youtu(?:\.be|be\.com)/(?:.*v(?:/|=)|(?:.*/)?)([\w'-]+)`)
	externalIdRegex = regexp.MustCompile(`^[\w-]+$`)
)

// extractExternalId finds the video id in a YouTube URL. A bare id is accepted too.
func extractExternalId(videoURL string) (string, bool) {
	videoURL = strings.TrimSpace(videoURL)
	if match := youtubeURLRegex.FindStringSubmatch(videoURL); match != nil {
		return match[1], true
	}

	if externalIdRegex.MatchString(videoURL) {
		return videoURL, true
	}

	return "", false
}

type RequestParams struct {
	Requester string
	VideoURL  string
	RoomId    string
}

// Request resolves the URL against the catalog and appends the song. It never
// changes the player.
func (s service) Request(ctx context.Context, params *RequestParams) (Song, error) {
	externalId, ok := extractExternalId(params.VideoURL)
	if !ok {
		return Song{}, fmt.Errorf("failed to extract video id from %q: %w", params.VideoURL, ErrSongNotFound)
	}

	result, err := s.catalog.GetByID(ctx, externalId)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to look up song", "external_id", externalId, "error", err)
		return Song{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	if len(result.Items) == 0 {
		return Song{}, ErrSongNotFound
	}

	song := room.Song{
		ExternalId:  externalId,
		Title:       result.Items[0].Title,
		RequestedBy: params.Requester,
		RequestedAt: s.now().UnixMilli(),
	}
	if _, err := s.roomRepo.AppendSong(ctx, &room.AppendSongParams{
		Song:   song,
		Limit:  s.playlistLimit,
		RoomId: params.RoomId,
	}); err != nil {
		if errors.Is(err, room.ErrPlaylistLimitReached) {
			return Song{}, ErrPlaylistLimitReached
		}

		return Song{}, fmt.Errorf("failed to append song: %w", err)
	}

	s.logger.InfoContext(ctx, "song added to the playlist",
		"title", song.Title,
		"external_id", song.ExternalId,
		"requested_by", song.RequestedBy,
	)

	return songFromRepo(song), nil
}

type StatusResponse struct {
	CurrentSong *Song
}

// Status reports the song clients are rendering, nil when nothing plays.
func (s service) Status(ctx context.Context, roomId string) (StatusResponse, error) {
	player, err := s.roomRepo.GetPlayer(ctx, roomId)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("failed to get player: %w", err)
	}

	if !player.IsStarted || !player.IsPlaying {
		return StatusResponse{}, nil
	}

	playlist, err := s.roomRepo.GetPlaylist(ctx, roomId)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("failed to get playlist: %w", err)
	}

	if len(playlist) == 0 {
		return StatusResponse{}, nil
	}

	song := songFromRepo(playlist[currentIndex(player.CurrentIndex, len(playlist))])
	return StatusResponse{CurrentSong: &song}, nil
}

// Upcoming lists up to n songs that follow the current one, wrapping around.
func (s service) Upcoming(ctx context.Context, roomId string, n int) ([]Song, error) {
	player, err := s.roomRepo.GetPlayer(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	playlist, err := s.roomRepo.GetPlaylist(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	indexes := upcomingIndexes(player.CurrentIndex, len(playlist), n)
	songs := make([]Song, 0, len(indexes))
	for _, i := range indexes {
		songs = append(songs, songFromRepo(playlist[i]))
	}

	return songs, nil
}
