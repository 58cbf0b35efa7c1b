package netport

import (
	"time"

	"github.com/gorilla/websocket"

	"europa/internal/port"
)

// wsBackend adapts gorilla/websocket's message framing to port.Backend's
// byte stream contract: a WebSocket connection speaks whole messages, not
// bytes, so reads refill a small buffer one message at a time and writes
// accumulate into an outgoing buffer flushed as one text message by
// Flush (spec.md §4.6 gives ports an explicit flush precisely so a
// message-oriented backend like this one has somewhere to batch).
// Grounded on the teacher's internal/network/websocket.go WebSocketConn.
type wsBackend struct {
	conn *websocket.Conn

	readBuf []byte
	readPos int

	writeBuf []byte
}

// DialWebSocket opens a client WebSocket connection.
func DialWebSocket(url string, handshakeTimeout time.Duration) (port.Backend, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &wsBackend{conn: conn}, nil
}

// WrapWebSocket adapts an already-upgraded server-side connection (from
// a future websocket-server built-in using gorilla/websocket's
// Upgrader, per the teacher's websocket_server.go) as a Backend.
func WrapWebSocket(conn *websocket.Conn) port.Backend {
	return &wsBackend{conn: conn}
}

func (b *wsBackend) fillRead() error {
	if b.readPos < len(b.readBuf) {
		return nil
	}
	_, data, err := b.conn.ReadMessage()
	if err != nil {
		b.readBuf, b.readPos = nil, 0
		return err
	}
	b.readBuf, b.readPos = data, 0
	return nil
}

func (b *wsBackend) ReadByte() (byte, bool, error) {
	if err := b.fillRead(); err != nil {
		return 0, false, nil
	}
	c := b.readBuf[b.readPos]
	b.readPos++
	return c, true, nil
}

func (b *wsBackend) PeekByte() (byte, bool, error) {
	if err := b.fillRead(); err != nil {
		return 0, false, nil
	}
	return b.readBuf[b.readPos], true, nil
}

func (b *wsBackend) WriteByte(c byte) error {
	b.writeBuf = append(b.writeBuf, c)
	return nil
}

// Flush sends everything buffered by WriteByte since the last Flush as
// one text message, the natural place for a message-framed backend to
// do its one send (write-string followed by flush-output-port is the
// idiomatic Europa script pattern for this).
func (b *wsBackend) Flush() error {
	if len(b.writeBuf) == 0 {
		return nil
	}
	err := b.conn.WriteMessage(websocket.TextMessage, b.writeBuf)
	b.writeBuf = b.writeBuf[:0]
	return err
}

func (b *wsBackend) Close() error { return b.conn.Close() }
func (b *wsBackend) Ready() bool  { return b.readPos < len(b.readBuf) }
func (b *wsBackend) Name() string { return "websocket port " + b.conn.RemoteAddr().String() }
