package websocket

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rajivgeraev/flippy-exchange/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler подключает клиента по токену из query-параметра token
func (m *Manager) Handler(jwtService *utils.JWTService, chat ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := jwtService.ExtractUserID(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		NewClient(userID, conn, m, chat).Start()
	}
}
