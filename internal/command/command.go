package command

import (
	"context"
	"fmt"
	"regexp"
)

type Category int

const (
	// CategoryStartup events fire once when a room comes online and carry no text.
	CategoryStartup Category = iota
	// CategoryMessage events are chat messages typed by a member.
	CategoryMessage
	// CategorySignal events are emitted by clients' players.
	CategorySignal
)

func (c Category) String() string {
	switch c {
	case CategoryStartup:
		return "startup"
	case CategoryMessage:
		return "message"
	case CategorySignal:
		return "signal"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

type Event struct {
	Category Category
	RoomId   string
	Sender   string
	Text     string
}

// Reply is a chat message produced by a command. An empty To addresses the whole room.
type Reply struct {
	To   string
	Text string
}

// Action handles a matched event. args holds the pattern's submatches.
type Action func(ctx context.Context, event *Event, args []string) (*Reply, error)

type Route struct {
	Category Category
	Pattern  *regexp.Regexp
	Action   Action
}

func (r Route) match(event *Event) ([]string, bool) {
	if r.Category != event.Category {
		return nil, false
	}

	switch event.Category {
	case CategoryStartup:
		return nil, true
	case CategoryMessage, CategorySignal:
		if r.Pattern == nil {
			return nil, false
		}
		args := r.Pattern.FindStringSubmatch(event.Text)
		return args, args != nil
	default:
		return nil, false
	}
}

// Dispatcher routes events to the first matching route in registration order.
type Dispatcher struct {
	routes []Route
}

func NewDispatcher(routes ...Route) *Dispatcher {
	return &Dispatcher{routes: routes}
}

// Dispatch runs the first matching route. An event no route matches is ignored and
// yields a nil reply.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) (*Reply, error) {
	for _, route := range d.routes {
		args, ok := route.match(event)
		if !ok {
			continue
		}

		return route.Action(ctx, event, args)
	}

	return nil, nil
}
