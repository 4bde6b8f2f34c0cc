package listener

import (
	"bufio"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"inspectd/internal/app/packet"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.TCP.Port = 0
	cfg.TCP.Banner = "test banner"
	cfg.WebSocket.Port = 0
	cfg.Pipe.Dir = t.TempDir()
	cfg.Pipe.Name = "pipe"
	cfg.Pipe.Instances = 3
	cfg.Listener.ShutdownGrace = 100 * time.Millisecond

	return cfg
}

func testLogger(ctrl *gomock.Controller) logger.Logger {
	l := logger.NewMockLogger(ctrl)
	l.EXPECT().WithComponent(gomock.Any()).Return(l).AnyTimes()
	l.EXPECT().Debug().Return(nil).AnyTimes()
	l.EXPECT().Info().Return(nil).AnyTimes()
	l.EXPECT().Warn().Return(nil).AnyTimes()
	l.EXPECT().Error().Return(nil).AnyTimes()

	return l
}

type received struct {
	packet packet.Packet
	connID string
}

// events records everything a listener reports
type events struct {
	mu           sync.Mutex
	packets      []received
	connected    []string
	disconnected []string
	errors       []error
}

func (e *events) handlers() Handlers {
	return Handlers{
		PacketReceived: func(p packet.Packet, connID string) {
			e.mu.Lock()
			defer e.mu.Unlock()

			e.packets = append(e.packets, received{packet: p, connID: connID})
		},
		ClientConnected: func(connID, remote string) {
			e.mu.Lock()
			defer e.mu.Unlock()

			e.connected = append(e.connected, connID)
		},
		ClientDisconnected: func(connID string) {
			e.mu.Lock()
			defer e.mu.Unlock()

			e.disconnected = append(e.disconnected, connID)
		},
		Error: func(err error) {
			e.mu.Lock()
			defer e.mu.Unlock()

			e.errors = append(e.errors, err)
		},
	}
}

func (e *events) packetCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.packets)
}

func (e *events) packet(i int) received {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.packets[i]
}

func (e *events) errorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.errors)
}

func (e *events) disconnectedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.disconnected)
}

// handshake reads the server banner and answers with a client banner
func handshake(t *testing.T, conn net.Conn) *bufio.Reader {
	t.Helper()

	reader := bufio.NewReader(conn)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "test banner\n", line)

	_, err = conn.Write([]byte("client banner\r\n"))
	require.NoError(t, err)

	return reader
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()

	n, err := strconv.Atoi(s)
	require.NoError(t, err)

	return n
}

func (e *events) err(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.errors[i]
}
