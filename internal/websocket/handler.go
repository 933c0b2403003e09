package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection on the hub and blocks until it is closed
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string, onMessage MessageHandler) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, 256), onMessage: onMessage}
	hub.Register(client)

	go client.writePump()
	client.readPump()
}

// NewClient builds a connection-less client, used to drive handlers without a socket
func NewClient(hub *Hub, sessionID string) *Client {
	return &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 256)}
}
