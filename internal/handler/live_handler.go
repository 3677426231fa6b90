package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"microfeed/internal/models"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Live streams full snapshots of ?scope= over a WebSocket, the first one
// right after the upgrade and then one per change.
func (h *Handlers) Live(w http.ResponseWriter, r *http.Request) {
	scope, err := models.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub, err := h.FeedService.Subscribe(r.Context(), scope)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer sub.Cancel()

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered
		return
	}
	defer conn.Close()

	// the client never sends data; reading only notices the close
	go func() {
		defer sub.Cancel()

		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-sub.Snapshots():
			if !ok {
				if err := sub.Err(); err != nil {
					log.Printf("Живой запрос %s завершился с ошибкой: %v", scope.Key(), err)
					_ = conn.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "query failed"),
						time.Now().Add(h.WriteTimeout))
				}
				return
			}

			_ = conn.SetWriteDeadline(time.Now().Add(h.WriteTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.WriteTimeout)); err != nil {
				return
			}
		}
	}
}
