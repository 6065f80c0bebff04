package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/projetojaiba/corrida-system/draw"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS для WS решается на уровне reverse proxy.
		return true
	},
}

// ServeDrawWs подключает зрителя к комнате сессии розыгрыша.
// Комната — токен сессии; события пушатся хабом.
func ServeDrawWs(hub *draw.Hub, w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "missing session token", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &draw.Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: token,
	}
	hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
