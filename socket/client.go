package socket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"lembarkolab/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin allows connections from the frontend dev server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket subscription to one topic. A browser holding a
// document open and a notification channel open has two clients.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Topic  string
	UserID string
	Send   chan []byte
}

// ServeWs upgrades the connection and subscribes it to the topic named in
// the query string. Auth has already resolved userID.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		http.Error(w, "Missing topic", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:    hub,
		Conn:   conn,
		Topic:  topic,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	client.Hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}

		// Clients may only track presence and broadcast events; the identity
		// and topic are always the server's, never the payload's.
		if msg.Type != TrackType && msg.Type != BroadcastType {
			logger.Sugar.Warnf("Client %s sent a reserved message type %s", c.UserID, msg.Type)
			continue
		}
		msg.Topic = c.Topic
		msg.UserID = c.UserID

		c.Hub.Inbound <- msg
	}
}

func (c *Client) writePump() {
	// Ping every 30s to keep the connection alive and notice dead peers.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
