package packet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_TypeCodes(t *testing.T) {
	assert.Equal(t, Type(1), TypeControlCommand)
	assert.Equal(t, Type(4), TypeLogEntry)
	assert.Equal(t, Type(5), TypeWatch)
	assert.Equal(t, Type(6), TypeProcessFlow)
	assert.Equal(t, Type(7), TypeLogHeader)
}

func Test_Packet_Type(t *testing.T) {
	tests := []struct {
		name     string
		packet   Packet
		expected Type
	}{
		{name: "LogEntry", packet: &LogEntry{}, expected: TypeLogEntry},
		{name: "Watch", packet: &Watch{}, expected: TypeWatch},
		{name: "ProcessFlow", packet: &ProcessFlow{}, expected: TypeProcessFlow},
		{name: "ControlCommand", packet: &ControlCommand{}, expected: TypeControlCommand},
		{name: "LogHeader", packet: &LogHeader{}, expected: TypeLogHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.packet.Type())
			assert.Equal(t, tt.name, tt.packet.Type().String())
		})
	}

	assert.Equal(t, "Unknown", Type(99).String())
}

func Test_EnumStrings(t *testing.T) {
	assert.Equal(t, "Warning", LogEntryWarning.String())
	assert.Equal(t, "DatabaseStructure", LogEntryDatabaseStructure.String())
	assert.Equal(t, "Unknown", LogEntryType(55).String())
	assert.Equal(t, "SqlSource", ViewerSQLSource.String())
	assert.Equal(t, "Unknown", ViewerID(999).String())
	assert.Equal(t, "Object", WatchObject.String())
	assert.Equal(t, "LeaveProcess", FlowLeaveProcess.String())
	assert.Equal(t, "ClearProcessFlow", CommandClearProcessFlow.String())
}

func Test_Color_Pack(t *testing.T) {
	c := Color{R: 0x11, G: 0x22, B: 0x33, A: 0x44}

	assert.Equal(t, uint32(0x44332211), c.Pack())
	assert.Equal(t, c, UnpackColor(c.Pack()))
	assert.Equal(t, Transparent, UnpackColor(0))
}

func Test_NewLogHeader(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		app      string
		host     string
		expected map[string]string
	}{
		{
			name:    "CRLF separated",
			content: "hostname=box\r\nappname=Billing\r\n",
			app:     "Billing",
			host:    "box",
		},
		{
			name:    "Keys are case insensitive",
			content: "HostName=BOX\r\nAppName=Shop",
			app:     "Shop",
			host:    "BOX",
		},
		{
			name:    "Missing keys and junk lines",
			content: "garbage\r\n=novalue\r\nother=1\r\n",
		},
		{
			name: "Empty content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLogHeader(tt.content)

			assert.Equal(t, tt.content, h.Content)
			assert.Equal(t, tt.app, h.AppName)
			assert.Equal(t, tt.host, h.HostName)
		})
	}
}

func Test_FormatHeaderContent(t *testing.T) {
	content := FormatHeaderContent([2]string{"hostname", "box"}, [2]string{"appname", "Shop"})

	assert.Equal(t, "hostname=box\r\nappname=Shop\r\n", content)

	values := ParseHeaderContent(content)
	assert.Equal(t, "box", values[HeaderHostName])
	assert.Equal(t, "Shop", values[HeaderAppName])
}

func Test_Summarize(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local)

	tests := []struct {
		name     string
		packet   Packet
		expected Summary
	}{
		{
			name: "LogEntry",
			packet: &LogEntry{
				LogEntryType: LogEntryError,
				AppName:      "shop",
				SessionName:  "Main",
				HostName:     "box",
				Title:        "boom",
				Timestamp:    ts,
			},
			expected: Summary{Kind: "LogEntry", Level: "Error", App: "shop", Session: "Main", Host: "box", Title: "boom", Timestamp: ts},
		},
		{
			name:     "Watch",
			packet:   &Watch{Name: "n", Value: "42", WatchType: WatchInteger, Timestamp: ts},
			expected: Summary{Kind: "Watch", Level: "Integer", Title: "n = 42", Timestamp: ts},
		},
		{
			name:     "ControlCommand",
			packet:   &ControlCommand{CommandType: CommandClearAll, Timestamp: ts},
			expected: Summary{Kind: "ControlCommand", Level: "ClearAll", Title: "ClearAll", Timestamp: ts},
		},
		{
			name:     "LogHeader",
			packet:   &LogHeader{AppName: "shop", HostName: "box", Timestamp: ts},
			expected: Summary{Kind: "LogHeader", App: "shop", Host: "box", Title: "connected: shop@box", Timestamp: ts},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Summarize(tt.packet))
		})
	}
}
