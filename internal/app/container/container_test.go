package container

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectd/internal/app/codec"
	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
)

var stamp = time.Date(2024, time.January, 15, 10, 30, 0, 500_000_000, time.Local)

func samplePackets() []packet.Packet {
	return []packet.Packet{
		&packet.LogEntry{LogEntryType: packet.LogEntryMessage, Title: "a", Timestamp: stamp},
		&packet.Watch{Name: "x", Value: "1", WatchType: packet.WatchInteger, Timestamp: stamp},
		&packet.ProcessFlow{ProcessFlowType: packet.FlowEnterMethod, Title: "m", Timestamp: stamp},
	}
}

func encodeContainer(t *testing.T, packets []packet.Packet) []byte {
	t.Helper()

	var buf bytes.Buffer

	w, err := NewWriter(&buf)
	require.NoError(t, err)

	for _, p := range packets {
		require.NoError(t, w.Write(p))
	}

	require.NoError(t, w.Close())
	assert.Equal(t, len(packets), w.Count())

	return buf.Bytes()
}

func Test_WriteRead_PreservesOrder(t *testing.T) {
	written := []packet.Packet{
		&packet.LogEntry{LogEntryType: packet.LogEntryMessage, Title: "a", Timestamp: stamp},
		&packet.Watch{Name: "x", Value: "1", WatchType: packet.WatchString, Timestamp: stamp},
		&packet.ControlCommand{CommandType: packet.CommandClearLog, Timestamp: stamp},
	}

	data := encodeContainer(t, written)
	assert.Equal(t, []byte(Magic), data[:4])

	r, err := NewReader(bytes.NewReader(data))
	require.NoError(t, err)

	read, err := ReadAll(r)
	require.NoError(t, err)
	require.Len(t, read, 3)

	assert.Equal(t, written[0], read[0])
	assert.Equal(t, written[1], read[1])

	cmd, ok := read[2].(*packet.ControlCommand)
	require.True(t, ok)
	assert.Equal(t, packet.CommandClearLog, cmd.CommandType)
	assert.Nil(t, cmd.Data)
}

func Test_NewReader_Header(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected error
	}{
		{name: "Empty file", data: nil, expected: errors.ErrFileTooSmall},
		{name: "Shorter than magic", data: []byte("SIL"), expected: errors.ErrFileTooSmall},
		{name: "Wrong magic", data: []byte("NOPE\x04\x00"), expected: errors.ErrInvalidMagic},
		{name: "Lowercase magic", data: []byte("silf"), expected: errors.ErrInvalidMagic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(tt.data))
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func Test_NewReader_EmptyContainer(t *testing.T) {
	r, err := NewReader(bytes.NewReader([]byte(Magic)))
	require.NoError(t, err)

	p, err := r.Next()
	assert.Nil(t, p)
	assert.Equal(t, io.EOF, err)
}

func Test_Reader_Truncation(t *testing.T) {
	packets := samplePackets()
	data := encodeContainer(t, packets)

	lastFrame, err := codec.AppendFrame(nil, packets[2])
	require.NoError(t, err)

	boundary := len(data) - len(lastFrame)

	tests := []struct {
		name  string
		cut   int
		count int
	}{
		{name: "Inside the last payload", cut: len(data) - 1, count: 2},
		{name: "Inside the last frame header", cut: boundary + 3, count: 2},
		{name: "On a frame boundary", cut: boundary, count: 2},
		{name: "Inside the first frame", cut: len(Magic) + 10, count: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(data[:tt.cut]))
			require.NoError(t, err)

			read, err := ReadAll(r)
			require.NoError(t, err)
			require.Len(t, read, tt.count)

			for i := range read {
				assert.Equal(t, packets[i], read[i])
			}
		})
	}
}

func Test_Reader_Strict(t *testing.T) {
	packets := samplePackets()
	data := encodeContainer(t, packets)

	r, err := NewReader(bytes.NewReader(data[:len(data)-1]), WithStrict())
	require.NoError(t, err)

	read, err := ReadAll(r)
	assert.ErrorIs(t, err, errors.ErrTruncatedFrame)
	assert.Equal(t, packets[:2], read)
}

func Test_Reader_OversizedFrame(t *testing.T) {
	data := encodeContainer(t, samplePackets()[:1])

	oversized := make([]byte, codec.FrameHeaderSize)
	binary.LittleEndian.PutUint16(oversized[0:], uint16(packet.TypeLogEntry))
	binary.LittleEndian.PutUint32(oversized[2:], 2048)
	data = append(data, oversized...)
	data = append(data, make([]byte, 2048)...)

	t.Run("Silent stop", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(data), WithMaxPayload(1024))
		require.NoError(t, err)

		read, err := ReadAll(r)
		require.NoError(t, err)
		assert.Len(t, read, 1)
	})

	t.Run("Strict", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(data), WithMaxPayload(1024), WithStrict())
		require.NoError(t, err)

		read, err := ReadAll(r)
		assert.ErrorIs(t, err, errors.ErrFrameTooLarge)
		assert.Len(t, read, 1)
	})
}

func Test_Reader_UndecodableFrame(t *testing.T) {
	packets := samplePackets()

	var buf bytes.Buffer
	buf.WriteString(Magic)

	first, err := codec.AppendFrame(nil, packets[0])
	require.NoError(t, err)
	buf.Write(first)

	buf.Write([]byte{2, 0, 3, 0, 0, 0, 'a', 'b', 'c'})

	second, err := codec.AppendFrame(nil, packets[1])
	require.NoError(t, err)
	buf.Write(second)

	t.Run("Skipped", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)

		read, err := ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, packets[:2], read)
		assert.Equal(t, 1, r.Skipped())
	})

	t.Run("Strict", func(t *testing.T) {
		r, err := NewReader(bytes.NewReader(buf.Bytes()), WithStrict())
		require.NoError(t, err)

		read, err := ReadAll(r)
		assert.ErrorIs(t, err, errors.ErrUnknownPacketType)
		assert.Equal(t, packets[:1], read)
	})
}

func Test_Reader_NextAfterEnd(t *testing.T) {
	data := encodeContainer(t, samplePackets())

	r, err := NewReader(bytes.NewReader(data[:len(data)-1]))
	require.NoError(t, err)

	_, err = ReadAll(r)
	require.NoError(t, err)

	p, err := r.Next()
	assert.Nil(t, p)
	assert.Equal(t, io.EOF, err)
}

func Test_Files(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		compressed bool
	}{
		{name: "Plain", file: "session.sil", compressed: false},
		{name: "Compressed", file: "session.sil.zst", compressed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			packets := samplePackets()

			require.NoError(t, WriteFile(path, packets))
			assert.Equal(t, tt.compressed, IsCompressedPath(path))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, !tt.compressed, bytes.HasPrefix(raw, []byte(Magic)))
			assert.Equal(t, tt.compressed, bytes.HasPrefix(raw, zstdMagic))

			read, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, packets, read)
		})
	}
}

func Test_Open_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.sil"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func Test_Create_InvalidPath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "out.sil"))
	assert.ErrorIs(t, err, errors.ErrFailedToWriteFile)
}
