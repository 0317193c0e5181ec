package controller

import (
	"github.com/sharetube/jukebox/pkg/wsrouter"
)

const (
	inputChatMessage = "CHAT_MESSAGE"
	inputSongEnded   = "SONG_ENDED"
	inputAlive       = "ALIVE"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdMw(), c.loggerWSMw(), c.keepAliveWSMw())
	mux.OnError(c.handleWSError)

	wsrouter.Handle(mux, inputAlive, c.handleAlive)

	// chat
	wsrouter.Handle(mux, inputChatMessage, c.handleChatMessage)

	// player
	wsrouter.Handle(mux, inputSongEnded, c.handleSongEnded)

	return mux
}
