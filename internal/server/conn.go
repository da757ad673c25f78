package server

import "github.com/gorilla/websocket"

// wsConn adapts a gorilla websocket connection to the actor's frame
// interface. Control frames (ping/pong/close) are handled by the library;
// binary frames are skipped, the control plane is text-only.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadFrame() ([]byte, error) {
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind == websocket.TextMessage {
			return data, nil
		}
	}
}

func (c *wsConn) WriteFrame(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
