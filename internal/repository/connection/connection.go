package connection

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrAlreadyExists = errors.New("connection already exists")
	ErrNotFound      = errors.New("connection not found")
	ErrClosed        = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 256
)

// Conn is a member's websocket connection. Writes are serialized so the broadcast
// subscriber and the connection's own handler can share it.
type Conn struct {
	Id       string
	RoomId   string
	Username string
	ws       *websocket.Conn
	mu       sync.Mutex
	send     chan []byte
	done     chan struct{}
	close    sync.Once
}

// NewConn starts the goroutine draining the send queue. It stops on Close.
func NewConn(ws *websocket.Conn, roomId, username string) *Conn {
	c := &Conn{
		Id:       uuid.NewString(),
		RoomId:   roomId,
		Username: username,
		ws:       ws,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
	}
	go c.writePump()

	return c
}

func (c *Conn) WS() *websocket.Conn {
	return c.ws
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (c *Conn) WriteMessage(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Send queues data without blocking. A connection that lets its queue fill up is
// too slow to follow the room and gets closed.
func (c *Conn) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	default:
		c.Close()
		return ErrSendQueueFull
	}
}

func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.WriteMessage(data); err != nil {
				c.Close()
				return
			}
		}
	}
}

func (c *Conn) Close() error {
	var err error
	c.close.Do(func() {
		close(c.done)

		// gorilla allows Close concurrently with a write
		if c.ws != nil {
			err = c.ws.Close()
		}
	})

	return err
}
