package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-capture-service/internal/broadcast"
)

// WSHandler upgrades observers onto the push channel. The channel is one-way:
// every connected observer receives every lifecycle event, unfiltered, and
// inbound frames are discarded.
type WSHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *broadcast.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("client connected: %s", r.RemoteAddr)
	defer log.Printf("client disconnected: %s", r.RemoteAddr)

	events, cancel := h.hub.Register()
	defer cancel()

	// drain inbound frames so pings and close frames are processed
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case data, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerDone:
			return
		}
	}
}
