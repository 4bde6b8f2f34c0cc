package tap

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"

	"inspectd/internal/app/console"
	"inspectd/internal/app/errors"
	"inspectd/internal/config"
)

// Client attaches to a running tap and prints what it receives
type Client interface {
	Connect(socketPath string) error
	Subscribe(apps []string) error
	Stream(ctx context.Context, output io.Writer) error
	Close() error
}

type client struct {
	conn      net.Conn
	formatter *console.Formatter
}

// NewClient creates a tail client rendering through formatter
func NewClient(formatter *console.Formatter) Client {
	return &client{formatter: formatter}
}

func (c *client) Connect(socketPath string) error {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToConnectSocket, err)
	}

	c.conn = conn

	return nil
}

// Subscribe asks for the packets of apps matching the given globs
func (c *client) Subscribe(apps []string) error {
	data, err := json.Marshal(SubscribeRequest{Type: MessageSubscribe, Apps: apps})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToMarshal, err)
	}

	if _, err := c.conn.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrFailedToWriteSocket, err)
	}

	return nil
}

// Stream writes every message to output until the server goes away or ctx
// ends
func (c *client) Stream(ctx context.Context, output io.Writer) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	reader := bufio.NewReader(c.conn)

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF || ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("%w: %w", errors.ErrFailedToReadSocket, err)
		}

		var envelope MessageEnvelope
		if err := json.Unmarshal(line, &envelope); err != nil {
			continue
		}

		switch envelope.Type {
		case MessageStatus:
			var status StatusMessage
			if err := json.Unmarshal(line, &status); err == nil {
				c.formatter.RenderBanner(output, config.AppName+" tail", []console.Field{
					{Label: "version:", Value: status.Version},
					{Label: "listeners:", Value: strings.Join(status.Listeners, ", ")},
				})
			}
		case MessagePacket:
			var msg PacketMessage
			if err := json.Unmarshal(line, &msg); err == nil {
				c.formatter.Write(output, msg.Packet)
			}
		}
	}
}

func (c *client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}

// FindSocket locates the tap socket. With a name it must exist, without one
// exactly one tap may be running.
func FindSocket(dir, name string) (string, error) {
	if name != "" {
		path := SocketPath(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		return "", fmt.Errorf("%w: '%s'", errors.ErrTapNotFound, name)
	}

	matches, err := filepath.Glob(filepath.Join(dir, config.TapPrefix+"*"+config.TapSuffix))
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrTapNotFound, err)
	}

	switch len(matches) {
	case 0:
		return "", errors.ErrTapNotFound
	case 1:
		return matches[0], nil
	}

	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), config.TapPrefix), config.TapSuffix)
	}

	return "", fmt.Errorf("%w, pick one with --name: %v", errors.ErrMultipleTaps, names)
}
