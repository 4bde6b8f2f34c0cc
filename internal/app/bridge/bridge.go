// Package bridge maps loosely typed JSON messages from browser and script
// clients onto packets.
package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"inspectd/internal/app/errors"
	"inspectd/internal/app/packet"
)

// DefaultSession is used when a log message names no session
const DefaultSession = "Default"

// now is replaced in tests
var now = time.Now

// Parse converts one JSON message into a packet. clientID becomes the app
// name of log entries that do not carry one.
func Parse(text string, clientID string) (packet.Packet, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var msg fields
	if err := dec.Decode(&msg); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidJSON, err)
	}

	if msg == nil {
		return nil, fmt.Errorf("%w: not an object", errors.ErrInvalidJSON)
	}

	kind, ok := msg.str("type")
	if !ok || kind == "" {
		return nil, errors.ErrMissingType
	}

	switch normalize(kind) {
	case "log", "logentry", "entry":
		return parseLogEntry(msg, clientID), nil
	case "watch", "var", "variable":
		return parseWatch(msg), nil
	case "flow", "processflow", "process":
		return parseProcessFlow(msg), nil
	case "control", "controlcommand", "command", "cmd":
		return parseControlCommand(msg), nil
	case "header", "logheader":
		return parseLogHeader(msg, clientID), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownMessageType, kind)
	}
}

func parseLogEntry(msg fields, clientID string) *packet.LogEntry {
	p := &packet.LogEntry{
		LogEntryType: LogEntryType(msg.raw("level", "logEntryType", "entryType")),
		AppName:      msg.strOr(clientID, "appName", "app"),
		SessionName:  msg.strOr(DefaultSession, "sessionName", "session"),
		Title:        msg.strOr("", "title", "message", "msg"),
		HostName:     msg.strOr("", "hostName", "host"),
		Data:         msg.bytes("data"),
		ProcessID:    msg.int32("processId", "pid"),
		ThreadID:     msg.int32("threadId", "tid"),
		Timestamp:    Timestamp(msg.raw("timestamp", "time")),
		Color:        ParseColor(msg.strOr("", "color")),
	}

	p.ViewerID = ViewerID(msg.raw("viewerId", "viewer"), len(p.Data) > 0)

	return p
}

func parseWatch(msg fields) *packet.Watch {
	value := msg.raw("value")

	return &packet.Watch{
		Name:      msg.strOr("", "name"),
		Value:     stringify(value),
		WatchType: WatchType(msg.raw("watchType", "kind"), value),
		Timestamp: Timestamp(msg.raw("timestamp", "time")),
	}
}

func parseProcessFlow(msg fields) *packet.ProcessFlow {
	return &packet.ProcessFlow{
		ProcessFlowType: ProcessFlowType(msg.raw("processFlowType", "flowType", "flow")),
		Title:           msg.strOr("", "title"),
		HostName:        msg.strOr("", "hostName", "host"),
		ProcessID:       msg.int32("processId", "pid"),
		ThreadID:        msg.int32("threadId", "tid"),
		Timestamp:       Timestamp(msg.raw("timestamp", "time")),
	}
}

func parseControlCommand(msg fields) *packet.ControlCommand {
	return &packet.ControlCommand{
		CommandType: ControlCommandType(msg.raw("commandType", "command")),
		Data:        msg.bytes("data"),
		Timestamp:   Timestamp(msg.raw("timestamp", "time")),
	}
}

func parseLogHeader(msg fields, clientID string) *packet.LogHeader {
	content, ok := msg.str("content")
	if !ok {
		content = packet.FormatHeaderContent(
			[2]string{packet.HeaderHostName, msg.strOr("", "hostName", "host")},
			[2]string{packet.HeaderAppName, msg.strOr(clientID, "appName", "app")},
		)
	}

	p := packet.NewLogHeader(content)
	p.Timestamp = Timestamp(msg.raw("timestamp", "time"))

	return p
}

// Timestamp accepts RFC 3339 strings and unix milliseconds. Anything else
// yields the current time.
func Timestamp(v any) time.Time {
	switch t := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return now()
		}

		return parsed.Local()
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return now()
			}

			ms = int64(f)
		}

		return time.UnixMilli(ms).Local()
	default:
		return now()
	}
}

// stringify renders a watch value the way it appeared in the message
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}

		return "false"
	default:
		return compact(t)
	}
}

func compact(v any) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// normalize lowercases s and drops separators so "Enter-Method",
// "enter_method" and "enterMethod" compare equal
func normalize(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case '-', '_', ' ', '.':
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}
