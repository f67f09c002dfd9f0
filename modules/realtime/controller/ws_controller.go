package controller

import (
	"net/http"
	"time"

	"roomdisplay/core/logger"
	"roomdisplay/modules/realtime/hub"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Displays are unauthenticated kiosk clients on the local network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSController struct {
	Hub *hub.Hub
}

func NewWSController(h *hub.Hub) *WSController {
	return &WSController{Hub: h}
}

// Serve upgrades the connection and streams hub events until the client
// goes away. Clients never send application data; the read pump exists only
// to observe disconnects and pongs.
func (w *WSController) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WSController:Serve:UpgradeFailed", "error", err)
		return nil
	}

	sub := w.Hub.Subscribe()

	go w.writePump(conn, sub)
	go w.readPump(conn, sub)
	return nil
}

func (w *WSController) readPump(conn *websocket.Conn, sub *hub.Subscriber) {
	defer func() {
		w.Hub.Unsubscribe(sub.ID)
		conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (w *WSController) writePump(conn *websocket.Conn, sub *hub.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
