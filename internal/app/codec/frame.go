package codec

import (
	"encoding/binary"
	"fmt"
	"io"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
)

// FrameHeaderSize is the size of the type code plus payload length prefix
const FrameHeaderSize = 6

// Frame is a raw frame before decoding
type Frame struct {
	Type    packet.Type
	Payload []byte
}

// FrameReader reads frames from a stream. The payload buffer is reused
// between calls, so a Frame is only valid until the next ReadFrame.
// A FrameReader must not be shared between connections.
type FrameReader struct {
	r          io.Reader
	maxPayload int
	header     [FrameHeaderSize]byte
	buf        []byte
}

// NewFrameReader creates a frame reader. maxPayload <= 0 disables the size check.
func NewFrameReader(r io.Reader, maxPayload int) *FrameReader {
	return &FrameReader{r: r, maxPayload: maxPayload}
}

// ReadFrame reads the next frame. It returns io.EOF when the stream ends on a
// frame boundary, ErrTruncatedFrame when it ends inside a frame and
// ErrFrameTooLarge when the declared length exceeds the limit.
func (fr *FrameReader) ReadFrame() (Frame, error) {
	if _, err := io.ReadFull(fr.r, fr.header[:]); err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}

		if err == io.ErrUnexpectedEOF {
			return Frame{}, fmt.Errorf("%w: %w", errors.ErrTruncatedFrame, err)
		}

		return Frame{}, err
	}

	t := packet.Type(binary.LittleEndian.Uint16(fr.header[0:]))
	n := binary.LittleEndian.Uint32(fr.header[2:])

	if fr.maxPayload > 0 && uint64(n) > uint64(fr.maxPayload) {
		return Frame{}, fmt.Errorf("%w: %d bytes", errors.ErrFrameTooLarge, n)
	}

	if cap(fr.buf) < int(n) {
		fr.buf = make([]byte, n)
	}

	payload := fr.buf[:n]
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Frame{}, fmt.Errorf("%w: %w", errors.ErrTruncatedFrame, io.ErrUnexpectedEOF)
		}

		return Frame{}, err
	}

	return Frame{Type: t, Payload: payload}, nil
}

// ReadPacket reads and decodes the next frame
func (fr *FrameReader) ReadPacket() (packet.Packet, error) {
	frame, err := fr.ReadFrame()
	if err != nil {
		return nil, err
	}

	return Decode(frame.Type, frame.Payload)
}

// ReadFrame reads a single frame using a one-off buffer
func ReadFrame(r io.Reader, maxPayload int) (Frame, error) {
	frame, err := NewFrameReader(r, maxPayload).ReadFrame()
	if err != nil {
		return Frame{}, err
	}

	return frame, nil
}

// AppendFrame appends the framed encoding of p to dst
func AppendFrame(dst []byte, p packet.Packet) ([]byte, error) {
	t, payload, err := Encode(p)
	if err != nil {
		return dst, err
	}

	dst = binary.LittleEndian.AppendUint16(dst, uint16(t))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))

	return append(dst, payload...), nil
}

// WriteFrame writes p as a single frame
func WriteFrame(w io.Writer, p packet.Packet) error {
	buf, err := AppendFrame(nil, p)
	if err != nil {
		return err
	}

	_, err = w.Write(buf)

	return err
}
