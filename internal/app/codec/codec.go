// Package codec converts packets to and from their binary wire form.
//
// A frame is a 6 byte header (2 byte type code, 4 byte payload length, both
// little-endian) followed by the payload. Each payload starts with a fixed
// size header block and is followed by its variable length fields in
// declaration order.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
)

// Fixed header block sizes per packet type
const (
	LogEntryHeaderSize       = 48
	WatchHeaderSize          = 20
	ProcessFlowHeaderSize    = 28
	ControlCommandHeaderSize = 8
	LogHeaderHeaderSize      = 4
)

var le = binary.LittleEndian

// Encode serializes a packet into its type code and payload
func Encode(p packet.Packet) (packet.Type, []byte, error) {
	switch v := p.(type) {
	case *packet.LogEntry:
		return packet.TypeLogEntry, encodeLogEntry(v), nil
	case *packet.Watch:
		return packet.TypeWatch, encodeWatch(v), nil
	case *packet.ProcessFlow:
		return packet.TypeProcessFlow, encodeProcessFlow(v), nil
	case *packet.ControlCommand:
		return packet.TypeControlCommand, encodeControlCommand(v), nil
	case *packet.LogHeader:
		return packet.TypeLogHeader, encodeLogHeader(v), nil
	default:
		return 0, nil, fmt.Errorf("%w: %T", errors.ErrUnknownPacketType, p)
	}
}

// Decode deserializes a payload of the given type. The payload is not retained.
func Decode(t packet.Type, payload []byte) (packet.Packet, error) {
	switch t {
	case packet.TypeLogEntry:
		return decodeLogEntry(payload)
	case packet.TypeWatch:
		return decodeWatch(payload)
	case packet.TypeProcessFlow:
		return decodeProcessFlow(payload)
	case packet.TypeControlCommand:
		return decodeControlCommand(payload)
	case packet.TypeLogHeader:
		return decodeLogHeader(payload)
	default:
		return nil, fmt.Errorf("%w: %d", errors.ErrUnknownPacketType, t)
	}
}

func encodeLogEntry(p *packet.LogEntry) []byte {
	size := LogEntryHeaderSize + len(p.AppName) + len(p.SessionName) + len(p.Title) + len(p.HostName) + len(p.Data)
	buf := make([]byte, LogEntryHeaderSize, size)

	le.PutUint32(buf[0:], uint32(p.LogEntryType))
	le.PutUint32(buf[4:], uint32(p.ViewerID))
	le.PutUint32(buf[8:], uint32(len(p.AppName)))
	le.PutUint32(buf[12:], uint32(len(p.SessionName)))
	le.PutUint32(buf[16:], uint32(len(p.Title)))
	le.PutUint32(buf[20:], uint32(len(p.HostName)))
	le.PutUint32(buf[24:], uint32(len(p.Data)))
	le.PutUint32(buf[28:], uint32(p.ProcessID))
	le.PutUint32(buf[32:], uint32(p.ThreadID))
	le.PutUint64(buf[36:], math.Float64bits(EncodeTimestamp(p.Timestamp)))
	le.PutUint32(buf[44:], p.Color.Pack())

	buf = append(buf, p.AppName...)
	buf = append(buf, p.SessionName...)
	buf = append(buf, p.Title...)
	buf = append(buf, p.HostName...)
	buf = append(buf, p.Data...)

	return buf
}

func decodeLogEntry(payload []byte) (packet.Packet, error) {
	if len(payload) < LogEntryHeaderSize {
		return nil, tooShort(packet.TypeLogEntry, len(payload))
	}

	r := fieldReader{buf: payload, off: LogEntryHeaderSize}

	p := &packet.LogEntry{
		LogEntryType: packet.LogEntryType(int32(le.Uint32(payload[0:]))),
		ViewerID:     packet.ViewerID(int32(le.Uint32(payload[4:]))),
		ProcessID:    int32(le.Uint32(payload[28:])),
		ThreadID:     int32(le.Uint32(payload[32:])),
		Timestamp:    DecodeTimestamp(math.Float64frombits(le.Uint64(payload[36:]))),
		Color:        packet.UnpackColor(le.Uint32(payload[44:])),
	}

	p.AppName = r.string(le.Uint32(payload[8:]))
	p.SessionName = r.string(le.Uint32(payload[12:]))
	p.Title = r.string(le.Uint32(payload[16:]))
	p.HostName = r.string(le.Uint32(payload[20:]))
	p.Data = r.bytes(le.Uint32(payload[24:]))

	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", packet.TypeLogEntry, r.err)
	}

	return p, nil
}

func encodeWatch(p *packet.Watch) []byte {
	buf := make([]byte, WatchHeaderSize, WatchHeaderSize+len(p.Name)+len(p.Value))

	le.PutUint32(buf[0:], uint32(len(p.Name)))
	le.PutUint32(buf[4:], uint32(len(p.Value)))
	le.PutUint32(buf[8:], uint32(p.WatchType))
	le.PutUint64(buf[12:], math.Float64bits(EncodeTimestamp(p.Timestamp)))

	buf = append(buf, p.Name...)
	buf = append(buf, p.Value...)

	return buf
}

func decodeWatch(payload []byte) (packet.Packet, error) {
	if len(payload) < WatchHeaderSize {
		return nil, tooShort(packet.TypeWatch, len(payload))
	}

	r := fieldReader{buf: payload, off: WatchHeaderSize}

	p := &packet.Watch{
		WatchType: packet.WatchType(int32(le.Uint32(payload[8:]))),
		Timestamp: DecodeTimestamp(math.Float64frombits(le.Uint64(payload[12:]))),
	}

	p.Name = r.string(le.Uint32(payload[0:]))
	p.Value = r.string(le.Uint32(payload[4:]))

	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", packet.TypeWatch, r.err)
	}

	return p, nil
}

func encodeProcessFlow(p *packet.ProcessFlow) []byte {
	buf := make([]byte, ProcessFlowHeaderSize, ProcessFlowHeaderSize+len(p.Title)+len(p.HostName))

	le.PutUint32(buf[0:], uint32(p.ProcessFlowType))
	le.PutUint32(buf[4:], uint32(len(p.Title)))
	le.PutUint32(buf[8:], uint32(len(p.HostName)))
	le.PutUint32(buf[12:], uint32(p.ProcessID))
	le.PutUint32(buf[16:], uint32(p.ThreadID))
	le.PutUint64(buf[20:], math.Float64bits(EncodeTimestamp(p.Timestamp)))

	buf = append(buf, p.Title...)
	buf = append(buf, p.HostName...)

	return buf
}

func decodeProcessFlow(payload []byte) (packet.Packet, error) {
	if len(payload) < ProcessFlowHeaderSize {
		return nil, tooShort(packet.TypeProcessFlow, len(payload))
	}

	r := fieldReader{buf: payload, off: ProcessFlowHeaderSize}

	p := &packet.ProcessFlow{
		ProcessFlowType: packet.ProcessFlowType(int32(le.Uint32(payload[0:]))),
		ProcessID:       int32(le.Uint32(payload[12:])),
		ThreadID:        int32(le.Uint32(payload[16:])),
		Timestamp:       DecodeTimestamp(math.Float64frombits(le.Uint64(payload[20:]))),
	}

	p.Title = r.string(le.Uint32(payload[4:]))
	p.HostName = r.string(le.Uint32(payload[8:]))

	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", packet.TypeProcessFlow, r.err)
	}

	return p, nil
}

func encodeControlCommand(p *packet.ControlCommand) []byte {
	buf := make([]byte, ControlCommandHeaderSize, ControlCommandHeaderSize+len(p.Data))

	le.PutUint32(buf[0:], uint32(p.CommandType))
	le.PutUint32(buf[4:], uint32(len(p.Data)))

	return append(buf, p.Data...)
}

func decodeControlCommand(payload []byte) (packet.Packet, error) {
	if len(payload) < ControlCommandHeaderSize {
		return nil, tooShort(packet.TypeControlCommand, len(payload))
	}

	r := fieldReader{buf: payload, off: ControlCommandHeaderSize}

	p := &packet.ControlCommand{
		CommandType: packet.ControlCommandType(int32(le.Uint32(payload[0:]))),
		Timestamp:   now(),
	}

	p.Data = r.bytes(le.Uint32(payload[4:]))

	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", packet.TypeControlCommand, r.err)
	}

	return p, nil
}

func encodeLogHeader(p *packet.LogHeader) []byte {
	buf := make([]byte, LogHeaderHeaderSize, LogHeaderHeaderSize+len(p.Content))

	le.PutUint32(buf[0:], uint32(len(p.Content)))

	return append(buf, p.Content...)
}

func decodeLogHeader(payload []byte) (packet.Packet, error) {
	if len(payload) < LogHeaderHeaderSize {
		return nil, tooShort(packet.TypeLogHeader, len(payload))
	}

	r := fieldReader{buf: payload, off: LogHeaderHeaderSize}
	content := r.string(le.Uint32(payload[0:]))

	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", packet.TypeLogHeader, r.err)
	}

	p := packet.NewLogHeader(content)
	p.Timestamp = now()

	return p, nil
}

func tooShort(t packet.Type, n int) error {
	return fmt.Errorf("%w: %s payload has %d bytes", errors.ErrPayloadTooShort, t, n)
}

// fieldReader slices the variable length fields that follow a header block.
// After the first error every read returns the zero value.
type fieldReader struct {
	buf []byte
	off int
	err error
}

func (r *fieldReader) next(n uint32) []byte {
	if r.err != nil {
		return nil
	}

	if n > math.MaxInt32 {
		r.err = fmt.Errorf("%w: %d", errors.ErrInvalidLength, int32(n))
		return nil
	}

	end := r.off + int(n)
	if end > len(r.buf) {
		r.err = fmt.Errorf("%w: field of %d bytes at offset %d exceeds %d", errors.ErrPayloadTooShort, n, r.off, len(r.buf))
		return nil
	}

	b := r.buf[r.off:end]
	r.off = end

	return b
}

func (r *fieldReader) string(n uint32) string {
	return string(r.next(n))
}

func (r *fieldReader) bytes(n uint32) []byte {
	b := r.next(n)
	if len(b) == 0 {
		return nil
	}

	out := make([]byte, len(b))
	copy(out, b)

	return out
}
