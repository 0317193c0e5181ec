package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sharetube/jukebox/internal/service/player"
)

const (
	SignalSongEnded = "songEnded"

	DefaultUpcomingCount = 5
)

const (
	replyCurrentSong   = "Current song: %s"
	replyNoSong        = "No song currently playing."
	replySongAdded     = "Your song has been added to the playlist!"
	replySongNotFound  = "Your song could not be found."
	replyLookupFailed  = "Your song could not be requested right now, please try again."
	replyPlaylistFull  = "The playlist is full."
	replyUpcomingTitle = "Next %d songs:"
	replyNoUpcoming    = "No upcoming songs."
)

var (
	songEndedRegex   = regexp.MustCompile(`^` + SignalSongEnded + `$`)
	statusRegex      = regexp.MustCompile(`^(!|/)(song|track|music)$`)
	requestRegex     = regexp.MustCompile(`^(!|/)request\s(.+)$`)
	skipRegex        = regexp.MustCompile(`^(!|/)skip$`)
	pauseRegex       = regexp.MustCompile(`^(!|/)pause$`)
	playRegex        = regexp.MustCompile(`^(!|/)play$`)
	startPlayerRegex = regexp.MustCompile(`^(!|/)startplayer$`)
	upcomingRegex    = regexp.MustCompile(`^(!|/)upcoming$`)
)

type iPlayerService interface {
	Initialize(ctx context.Context, roomId string) error
	Request(ctx context.Context, params *player.RequestParams) (player.Song, error)
	Status(ctx context.Context, roomId string) (player.StatusResponse, error)
	Upcoming(ctx context.Context, roomId string, n int) ([]player.Song, error)
	Skip(ctx context.Context, params *player.ControlParams) error
	EndSong(ctx context.Context, roomId string) error
	Pause(ctx context.Context, params *player.ControlParams) error
	Play(ctx context.Context, params *player.ControlParams) error
	StartPlayer(ctx context.Context, params *player.ControlParams) error
}

type playlistCommands struct {
	playerService iPlayerService
	upcomingCount int
	logger        *slog.Logger
}

// PlaylistRoutes is the command table of the room jukebox, in matching order.
func PlaylistRoutes(playerService iPlayerService, upcomingCount int, logger *slog.Logger) []Route {
	if upcomingCount <= 0 {
		upcomingCount = DefaultUpcomingCount
	}

	c := playlistCommands{
		playerService: playerService,
		upcomingCount: upcomingCount,
		logger:        logger,
	}

	return []Route{
		{Category: CategoryStartup, Action: c.initialize},
		{Category: CategorySignal, Pattern: songEndedRegex, Action: c.songEnded},
		{Category: CategoryMessage, Pattern: statusRegex, Action: c.status},
		{Category: CategoryMessage, Pattern: requestRegex, Action: c.request},
		{Category: CategoryMessage, Pattern: skipRegex, Action: c.skip},
		{Category: CategoryMessage, Pattern: pauseRegex, Action: c.pause},
		{Category: CategoryMessage, Pattern: playRegex, Action: c.play},
		{Category: CategoryMessage, Pattern: startPlayerRegex, Action: c.startPlayer},
		{Category: CategoryMessage, Pattern: upcomingRegex, Action: c.upcoming},
	}
}

func (c playlistCommands) initialize(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	if err := c.playerService.Initialize(ctx, event.RoomId); err != nil {
		return nil, fmt.Errorf("failed to initialize player: %w", err)
	}

	return nil, nil
}

func (c playlistCommands) songEnded(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	if err := c.playerService.EndSong(ctx, event.RoomId); err != nil {
		return nil, fmt.Errorf("failed to end song: %w", err)
	}

	return nil, nil
}

func (c playlistCommands) status(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	status, err := c.playerService.Status(ctx, event.RoomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	if status.CurrentSong == nil {
		return &Reply{Text: replyNoSong}, nil
	}

	return &Reply{Text: fmt.Sprintf(replyCurrentSong, status.CurrentSong.Title)}, nil
}

// request answers only the requester. Catalog failures end here as replies.
func (c playlistCommands) request(ctx context.Context, event *Event, args []string) (*Reply, error) {
	_, err := c.playerService.Request(ctx, &player.RequestParams{
		Requester: event.Sender,
		VideoURL:  args[2],
		RoomId:    event.RoomId,
	})

	var text string
	switch {
	case err == nil:
		text = replySongAdded
	case errors.Is(err, player.ErrSongNotFound):
		text = replySongNotFound
	case errors.Is(err, player.ErrLookupFailed):
		c.logger.WarnContext(ctx, "song request failed", "url", args[2], "error", err)
		text = replyLookupFailed
	case errors.Is(err, player.ErrPlaylistLimitReached):
		text = replyPlaylistFull
	default:
		return nil, fmt.Errorf("failed to request song: %w", err)
	}

	return &Reply{To: event.Sender, Text: text}, nil
}

func (c playlistCommands) skip(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	return nil, c.control(ctx, event, c.playerService.Skip)
}

func (c playlistCommands) pause(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	return nil, c.control(ctx, event, c.playerService.Pause)
}

func (c playlistCommands) play(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	return nil, c.control(ctx, event, c.playerService.Play)
}

func (c playlistCommands) startPlayer(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	return nil, c.control(ctx, event, c.playerService.StartPlayer)
}

func (c playlistCommands) control(ctx context.Context, event *Event, op func(context.Context, *player.ControlParams) error) error {
	if err := op(ctx, &player.ControlParams{
		SenderName: event.Sender,
		RoomId:     event.RoomId,
	}); err != nil {
		return fmt.Errorf("failed to control player: %w", err)
	}

	return nil
}

func (c playlistCommands) upcoming(ctx context.Context, event *Event, _ []string) (*Reply, error) {
	songs, err := c.playerService.Upcoming(ctx, event.RoomId, c.upcomingCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming songs: %w", err)
	}

	if len(songs) == 0 {
		return &Reply{Text: replyNoUpcoming}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, replyUpcomingTitle, len(songs))
	for _, song := range songs {
		b.WriteString("\n")
		b.WriteString(song.Title)
	}

	return &Reply{Text: b.String()}, nil
}
