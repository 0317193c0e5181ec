package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/jukebox/internal/repository/connection"
)

type repo struct {
	conns  map[string]*connection.Conn
	rooms  map[string]map[string]*connection.Conn
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewRepo(logger *slog.Logger) *repo {
	return &repo{
		conns:  make(map[string]*connection.Conn),
		rooms:  make(map[string]map[string]*connection.Conn),
		logger: logger,
	}
}

func (r *repo) Add(conn *connection.Conn) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "conn_id", conn.Id, "room_id", conn.RoomId)
	if _, ok := r.conns[conn.Id]; ok {
		r.logger.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.conns[conn.Id] = conn
	room, ok := r.rooms[conn.RoomId]
	if !ok {
		room = make(map[string]*connection.Conn)
		r.rooms[conn.RoomId] = room
	}
	room[conn.Id] = conn

	return nil
}

func (r *repo) Remove(connId string) error {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Debug(funcName, "conn_id", connId)
	conn, ok := r.conns[connId]
	if !ok {
		r.logger.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.conns, connId)
	if room, ok := r.rooms[conn.RoomId]; ok {
		delete(room, connId)
		if len(room) == 0 {
			delete(r.rooms, conn.RoomId)
		}
	}

	return nil
}

func (r *repo) GetConn(connId string) (*connection.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

// GetRoomConns returns a snapshot of the room's local connections.
func (r *repo) GetRoomConns(roomId string) []*connection.Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomId]
	conns := make([]*connection.Conn, 0, len(room))
	for _, conn := range room {
		conns = append(conns, conn)
	}

	return conns
}
