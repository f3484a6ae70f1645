// handlers/ws.go - Live progress feed over websocket
package handlers

import (
	"time"

	"bragbook/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeWait  = 10 * time.Second // Time allowed to write a message
	pingPeriod = 15 * time.Second // Send pings at this interval
)

var progressHub *services.EventHub

// InitWSHandlers wires the event hub into the websocket handlers
func InitWSHandlers(hub *services.EventHub) {
	if hub == nil {
		panic("EventHub not initialized before InitWSHandlers")
	}
	progressHub = hub
}

// WebSocketUpgrade rejects plain HTTP requests on the websocket route
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ProgressFeed pushes XP, level and badge events to the connected user as
// achievements are recorded, so the dashboard can react without polling.
var ProgressFeed = websocket.New(func(conn *websocket.Conn) {
	defer conn.Close()

	userID, ok := wsUserID(conn)
	if !ok {
		return
	}

	events, cancel := progressHub.Subscribe(userID)
	defer cancel()

	// Drain reads so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
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
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
})

func wsUserID(conn *websocket.Conn) (uint, bool) {
	switch id := conn.Locals("userId").(type) {
	case float64:
		return uint(id), true
	case uint:
		return id, true
	}
	return 0, false
}
