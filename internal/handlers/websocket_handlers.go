package handlers

import (
	"net/http"

	"chatrelay/internal/auth"
	"chatrelay/internal/config"
	"chatrelay/internal/relay"
	"chatrelay/pkg/logger"

	"github.com/gorilla/websocket"
)

type WebSocketHandlers struct {
	authService *auth.Service
	relay       *relay.Relay
	cfg         config.RelayConfig
	upgrader    websocket.Upgrader
}

func NewWebSocketHandlers(authService *auth.Service, rl *relay.Relay, cfg config.RelayConfig) *WebSocketHandlers {
	return &WebSocketHandlers{
		authService: authService,
		relay:       rl,
		cfg:         cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // Configure for production
		},
	}
}

// HandleWebSocket admits a relay connection. The bearer token is verified
// before the upgrade; without a valid one no relay state is created and no
// event is processed.
func (h *WebSocketHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	if _, err := h.authService.VerifyToken(token); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Upgrade error: %v", err)
		return
	}

	client := relay.NewClient(h.relay, ws, h.cfg)
	conn, err := h.relay.Admit(client, token)
	if err != nil {
		logger.Error("Admit error: %v", err)
		ws.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump(conn)
}
