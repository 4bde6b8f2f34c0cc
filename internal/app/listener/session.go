package listener

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"strings"

	"inspectd/internal/app/codec"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/metrics"
	"inspectd/internal/config/logger"
)

// ack is written after every frame on transports whose clients wait for it
var ack = []byte{0x00, 0x00}

// session runs the binary protocol for one connection: banner exchange
// followed by a stream of frames
type session struct {
	id         string
	transport  string
	conn       net.Conn
	banner     string
	ack        bool
	maxPayload int
	events     *subscribers
	metrics    metrics.Recorder
	log        logger.Logger
}

// run serves the connection until the client goes away or the connection is
// closed. A clean disconnect returns nil.
func (s *session) run() error {
	if _, err := io.WriteString(s.conn, s.banner+"\n"); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrHandshakeFailed, err)
	}

	reader := bufio.NewReader(s.conn)

	clientBanner, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil
		}

		return fmt.Errorf("%w: %w", errors.ErrHandshakeFailed, err)
	}

	s.log.Debug().Msgf("Client %s banner: %s", s.id, strings.TrimRight(clientBanner, "\r\n"))

	frames := codec.NewFrameReader(reader, s.maxPayload)

	for {
		frame, err := frames.ReadFrame()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		p, err := codec.Decode(frame.Type, frame.Payload)
		if err != nil {
			s.metrics.DecodeFailed(s.transport)
			s.events.reportError(fmt.Errorf("%s: %w", s.id, err))
		} else {
			s.metrics.PacketReceived(s.transport, p.Type())
			s.events.packetReceived(p, s.id)
		}

		if s.ack {
			if _, err := s.conn.Write(ack); err != nil {
				return err
			}
		}
	}
}
