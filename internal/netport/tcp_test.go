package netport

import (
	"net"
	"testing"

	"europa/internal/gcheap"
	"europa/internal/port"
)

func TestTCPBackendRoundTripsOverWrappedConn(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	h := gcheap.New()
	clientBackend := WrapTCP(client)
	serverBackend := WrapTCP(server)

	clientPort := port.New(h, port.Output|port.Textual, clientBackend)
	serverPort := port.New(h, port.Input|port.Textual, serverBackend)

	done := make(chan error, 1)
	go func() {
		done <- clientPort.WriteString("hello")
	}()

	got, ok, err := serverPort.ReadString(5)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected ok=true reading 5 bytes from a live connection")
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}
