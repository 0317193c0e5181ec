package connection

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPair returns the server side of a websocket wrapped in a Conn and the client
// side.
func newPair(t *testing.T) (*Conn, *websocket.Conn) {
	t.Helper()

	upgraded := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		upgraded <- ws
	}))
	t.Cleanup(srv.Close)

	client, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { client.Close() })

	select {
	case ws := <-upgraded:
		conn := NewConn(ws, "lobby", "alice")
		t.Cleanup(func() { conn.Close() })
		return conn, client
	case <-time.After(5 * time.Second):
		t.Fatal("websocket was not upgraded")
		return nil, nil
	}
}

func TestSendDeliversInOrder(t *testing.T) {
	conn, client := newPair(t)

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, conn.Send([]byte(msg)))
	}

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	for _, want := range []string{"one", "two", "three"} {
		_, data, err := client.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestSendQueueFullClosesConn(t *testing.T) {
	conn, _ := newPair(t)

	// holding the write lock stalls the pump like a client that stopped reading
	conn.mu.Lock()
	var err error
	for i := 0; i < sendQueueSize+2 && err == nil; i++ {
		err = conn.Send([]byte("sync"))
	}
	conn.mu.Unlock()

	assert.ErrorIs(t, err, ErrSendQueueFull)
	assert.ErrorIs(t, conn.Send([]byte("late")), ErrClosed)
}

func TestSendAfterClose(t *testing.T) {
	conn, _ := newPair(t)

	require.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.Send([]byte("late")), ErrClosed)
}
