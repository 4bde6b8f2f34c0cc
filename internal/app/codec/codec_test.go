package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
)

var reference = time.Date(2024, time.January, 15, 10, 30, 0, 500_000_000, time.Local)

func Test_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		packet packet.Packet
	}{
		{
			name: "Log entry with all fields",
			packet: &packet.LogEntry{
				LogEntryType: packet.LogEntryWarning,
				ViewerID:     packet.ViewerData,
				AppName:      "billing",
				SessionName:  "Main",
				Title:        "disk almost full",
				HostName:     "web-01",
				Data:         []byte{0x01, 0x02, 0x03},
				ProcessID:    4242,
				ThreadID:     -7,
				Timestamp:    reference,
				Color:        packet.Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44},
			},
		},
		{
			name: "Log entry with empty strings and nil data",
			packet: &packet.LogEntry{
				LogEntryType: packet.LogEntrySeparator,
				ViewerID:     packet.ViewerNone,
				Timestamp:    reference,
			},
		},
		{
			name: "Log entry with unicode",
			packet: &packet.LogEntry{
				LogEntryType: packet.LogEntryMessage,
				ViewerID:     packet.ViewerTitle,
				Title:        "größe ✓ 日本",
				Timestamp:    reference,
			},
		},
		{
			name: "Watch",
			packet: &packet.Watch{
				Name:      "counter",
				Value:     "42",
				WatchType: packet.WatchInteger,
				Timestamp: reference,
			},
		},
		{
			name:   "Watch with empty strings",
			packet: &packet.Watch{WatchType: packet.WatchString, Timestamp: reference},
		},
		{
			name: "Process flow",
			packet: &packet.ProcessFlow{
				ProcessFlowType: packet.FlowLeaveThread,
				Title:           "worker",
				HostName:        "web-01",
				ProcessID:       1,
				ThreadID:        2,
				Timestamp:       reference,
			},
		},
		{
			name: "Process flow at unix epoch",
			packet: &packet.ProcessFlow{
				ProcessFlowType: packet.FlowEnterProcess,
				Timestamp:       time.Date(1970, time.January, 1, 0, 0, 0, 0, time.Local),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, payload, err := Encode(tt.packet)
			require.NoError(t, err)
			assert.Equal(t, tt.packet.Type(), code)

			decoded, err := Decode(code, payload)
			require.NoError(t, err)
			assert.Equal(t, tt.packet, decoded)
		})
	}
}

func Test_RoundTrip_UntimedPackets(t *testing.T) {
	fixed := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.Local)
	original := now
	now = func() time.Time { return fixed }
	defer func() { now = original }()

	tests := []struct {
		name   string
		packet packet.Packet
	}{
		{
			name:   "Control command without data",
			packet: &packet.ControlCommand{CommandType: packet.CommandClearWatches, Timestamp: fixed},
		},
		{
			name:   "Control command with data",
			packet: &packet.ControlCommand{CommandType: packet.CommandClearAll, Data: []byte("x"), Timestamp: fixed},
		},
		{
			name: "Log header",
			packet: &packet.LogHeader{
				Content:   "appname=billing\r\nhostname=web-01\r\n",
				AppName:   "billing",
				HostName:  "web-01",
				Timestamp: fixed,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, payload, err := Encode(tt.packet)
			require.NoError(t, err)

			decoded, err := Decode(code, payload)
			require.NoError(t, err)
			assert.Equal(t, tt.packet, decoded)
		})
	}
}

func Test_Encode_LogEntryLayout(t *testing.T) {
	entry := &packet.LogEntry{
		LogEntryType: packet.LogEntryError,
		ViewerID:     packet.ViewerTitle,
		AppName:      "ab",
		SessionName:  "s",
		Title:        "ttt",
		HostName:     "h",
		Data:         []byte{9, 9},
		ProcessID:    10,
		ThreadID:     11,
		Timestamp:    reference,
		Color:        packet.Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44},
	}

	code, payload, err := Encode(entry)
	require.NoError(t, err)
	assert.Equal(t, packet.TypeLogEntry, code)
	require.Len(t, payload, LogEntryHeaderSize+2+1+3+1+2)

	le := binary.LittleEndian
	assert.Equal(t, uint32(102), le.Uint32(payload[0:]))
	assert.Equal(t, uint32(0), le.Uint32(payload[4:]))
	assert.Equal(t, uint32(2), le.Uint32(payload[8:]))
	assert.Equal(t, uint32(1), le.Uint32(payload[12:]))
	assert.Equal(t, uint32(3), le.Uint32(payload[16:]))
	assert.Equal(t, uint32(1), le.Uint32(payload[20:]))
	assert.Equal(t, uint32(2), le.Uint32(payload[24:]))
	assert.Equal(t, uint32(10), le.Uint32(payload[28:]))
	assert.Equal(t, uint32(11), le.Uint32(payload[32:]))
	assert.Equal(t, EncodeTimestamp(reference), math.Float64frombits(le.Uint64(payload[36:])))
	assert.Equal(t, []byte{0x11, 0x22, 0x33, 0x44}, payload[44:48])
	assert.Equal(t, "absttth", string(payload[48:55]))
	assert.Equal(t, []byte{9, 9}, payload[55:])
}

func Test_Encode_HeaderSizes(t *testing.T) {
	tests := []struct {
		name   string
		packet packet.Packet
		size   int
	}{
		{name: "Watch", packet: &packet.Watch{Timestamp: reference}, size: WatchHeaderSize},
		{name: "Process flow", packet: &packet.ProcessFlow{Timestamp: reference}, size: ProcessFlowHeaderSize},
		{name: "Control command", packet: &packet.ControlCommand{}, size: ControlCommandHeaderSize},
		{name: "Log header", packet: &packet.LogHeader{}, size: LogHeaderHeaderSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, payload, err := Encode(tt.packet)
			require.NoError(t, err)
			assert.Len(t, payload, tt.size)
		})
	}
}

func Test_Decode_Errors(t *testing.T) {
	_, validWatch, err := Encode(&packet.Watch{Name: "name", Value: "value", Timestamp: reference})
	require.NoError(t, err)

	negative := make([]byte, ControlCommandHeaderSize)
	binary.LittleEndian.PutUint32(negative[4:], math.MaxUint32)

	tests := []struct {
		name     string
		code     packet.Type
		payload  []byte
		expected error
	}{
		{name: "Unknown type", code: 2, payload: nil, expected: errors.ErrUnknownPacketType},
		{name: "Short log entry header", code: packet.TypeLogEntry, payload: make([]byte, 47), expected: errors.ErrPayloadTooShort},
		{name: "Short watch header", code: packet.TypeWatch, payload: make([]byte, 19), expected: errors.ErrPayloadTooShort},
		{name: "Short process flow header", code: packet.TypeProcessFlow, payload: make([]byte, 27), expected: errors.ErrPayloadTooShort},
		{name: "Short control command header", code: packet.TypeControlCommand, payload: make([]byte, 7), expected: errors.ErrPayloadTooShort},
		{name: "Short log header", code: packet.TypeLogHeader, payload: []byte{1}, expected: errors.ErrPayloadTooShort},
		{name: "Truncated variable field", code: packet.TypeWatch, payload: validWatch[:len(validWatch)-1], expected: errors.ErrPayloadTooShort},
		{name: "Negative field length", code: packet.TypeControlCommand, payload: negative, expected: errors.ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.code, tt.payload)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func Test_Decode_DoesNotAliasPayload(t *testing.T) {
	_, payload, err := Encode(&packet.LogEntry{Title: "abc", Data: []byte{1, 2}, Timestamp: reference})
	require.NoError(t, err)

	decoded, err := Decode(packet.TypeLogEntry, payload)
	require.NoError(t, err)

	for i := range payload {
		payload[i] = 0xFF
	}

	entry := decoded.(*packet.LogEntry)
	assert.Equal(t, "abc", entry.Title)
	assert.Equal(t, []byte{1, 2}, entry.Data)
}

func Test_Encode_UnknownPacket(t *testing.T) {
	_, _, err := Encode(nil)
	assert.ErrorIs(t, err, errors.ErrUnknownPacketType)
}

func Test_FrameReader(t *testing.T) {
	var stream bytes.Buffer

	first := &packet.Watch{Name: "a", Value: "1", WatchType: packet.WatchString, Timestamp: reference}
	second := &packet.LogEntry{Title: "b", Timestamp: reference}

	require.NoError(t, WriteFrame(&stream, first))
	require.NoError(t, WriteFrame(&stream, second))

	assert.Equal(t, []byte{5, 0}, stream.Bytes()[0:2])
	assert.Equal(t, uint32(WatchHeaderSize+2), binary.LittleEndian.Uint32(stream.Bytes()[2:6]))

	fr := NewFrameReader(&stream, 0)

	p, err := fr.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, first, p)

	p, err = fr.ReadPacket()
	require.NoError(t, err)
	assert.Equal(t, second, p)

	_, err = fr.ReadPacket()
	assert.Equal(t, io.EOF, err)
}

func Test_FrameReader_Truncation(t *testing.T) {
	frame, err := AppendFrame(nil, &packet.Watch{Name: "abc", Value: "def", Timestamp: reference})
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     []byte
		expected error
	}{
		{name: "Empty stream", data: nil, expected: io.EOF},
		{name: "Short frame header", data: frame[:3], expected: errors.ErrTruncatedFrame},
		{name: "Header only", data: frame[:FrameHeaderSize], expected: errors.ErrTruncatedFrame},
		{name: "Short payload", data: frame[:len(frame)-1], expected: errors.ErrTruncatedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.data), 0)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func Test_FrameReader_TooLarge(t *testing.T) {
	header := []byte{4, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(header[2:], 1024)

	_, err := ReadFrame(bytes.NewReader(header), 512)
	assert.ErrorIs(t, err, errors.ErrFrameTooLarge)
}

func Test_FrameReader_ReusesBuffer(t *testing.T) {
	var stream bytes.Buffer
	require.NoError(t, WriteFrame(&stream, &packet.LogHeader{Content: "appname=x"}))
	require.NoError(t, WriteFrame(&stream, &packet.LogHeader{Content: "a"}))

	fr := NewFrameReader(&stream, 0)

	first, err := fr.ReadFrame()
	require.NoError(t, err)

	second, err := fr.ReadFrame()
	require.NoError(t, err)

	assert.Same(t, &first.Payload[0], &second.Payload[0])
}
