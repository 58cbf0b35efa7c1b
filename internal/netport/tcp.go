// Package netport extends spec.md §4.6's port abstraction with two
// network-backed transports (SPEC_FULL.md §B.1): a TCP connection and a
// WebSocket connection, grounded on the teacher's
// internal/network/network.go (raw TCP dialing/listening) and
// internal/network/websocket.go (gorilla/websocket client and server).
// Both satisfy port.Backend, so a script opens and uses them exactly
// like a file or memory port — the dialers in tcp.go and websocket.go return a
// port.Backend, not a *port.Port, leaving port.New (and therefore
// gcheap tracking) to the caller the way file.go's OpenInputFile does.
package netport

import (
	"bufio"
	"net"
	"time"

	"europa/internal/port"
)

// tcpBackend wraps a net.Conn with the same buffered-reader treatment
// port.fileBackend gives an *os.File, grounded on
// internal/network/network.go's raw socket dial/accept helpers.
type tcpBackend struct {
	conn net.Conn
	br   *bufio.Reader
}

// DialTCP opens an outbound TCP connection, the backend for
// (open-output-port 'tcp host port) / (open-input-port 'tcp host port).
func DialTCP(address string, timeout time.Duration) (port.Backend, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, err
	}
	return &tcpBackend{conn: conn, br: bufio.NewReader(conn)}, nil
}

// WrapTCP adapts an already-accepted net.Conn (from a listener a script
// built with a future accept-tcp-connection built-in) as a Backend.
func WrapTCP(conn net.Conn) port.Backend {
	return &tcpBackend{conn: conn, br: bufio.NewReader(conn)}
}

func (b *tcpBackend) ReadByte() (byte, bool, error) {
	c, err := b.br.ReadByte()
	if err != nil {
		return 0, false, nil
	}
	return c, true, nil
}

func (b *tcpBackend) PeekByte() (byte, bool, error) {
	peek, err := b.br.Peek(1)
	if err != nil || len(peek) == 0 {
		return 0, false, nil
	}
	return peek[0], true, nil
}

func (b *tcpBackend) WriteByte(c byte) error {
	_, err := b.conn.Write([]byte{c})
	return err
}

func (b *tcpBackend) Flush() error { return nil }
func (b *tcpBackend) Close() error { return b.conn.Close() }
func (b *tcpBackend) Ready() bool  { return b.br.Buffered() > 0 }
func (b *tcpBackend) Name() string { return "tcp port " + b.conn.RemoteAddr().String() }
