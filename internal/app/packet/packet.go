// Package packet defines the diagnostic events exchanged between instrumented
// clients and the listeners: log entries, watches, process flow markers,
// control commands and connection headers.
package packet

import "time"

// Type is the wire tag of a packet. The numeric values are part of the
// protocol and must never be renumbered.
type Type int

// Packet type codes
const (
	TypeControlCommand Type = 1
	TypeLogEntry       Type = 4
	TypeWatch          Type = 5
	TypeProcessFlow    Type = 6
	TypeLogHeader      Type = 7
)

// String returns the name of the packet type
func (t Type) String() string {
	switch t {
	case TypeControlCommand:
		return "ControlCommand"
	case TypeLogEntry:
		return "LogEntry"
	case TypeWatch:
		return "Watch"
	case TypeProcessFlow:
		return "ProcessFlow"
	case TypeLogHeader:
		return "LogHeader"
	default:
		return "Unknown"
	}
}

// Packet is implemented by the five packet variants only
type Packet interface {
	Type() Type
	Time() time.Time
	sealed()
}

// LogEntry is a single log message with an optional binary payload
type LogEntry struct {
	LogEntryType LogEntryType
	ViewerID     ViewerID
	AppName      string
	SessionName  string
	Title        string
	HostName     string
	Data         []byte
	ProcessID    int32
	ThreadID     int32
	Timestamp    time.Time
	Color        Color
}

// Watch is a named variable value
type Watch struct {
	Name      string
	Value     string
	WatchType WatchType
	Timestamp time.Time
}

// ProcessFlow marks entering or leaving a method, thread or process
type ProcessFlow struct {
	ProcessFlowType ProcessFlowType
	Title           string
	HostName        string
	ProcessID       int32
	ThreadID        int32
	Timestamp       time.Time
}

// ControlCommand instructs a consumer to clear one of its views. The wire
// format carries no timestamp, Timestamp is set when the packet is received.
type ControlCommand struct {
	CommandType ControlCommandType
	Data        []byte
	Timestamp   time.Time
}

// LogHeader is the connection header a client sends after the banner. The
// wire format carries only Content, the other fields are derived from it.
type LogHeader struct {
	Content   string
	AppName   string
	HostName  string
	Timestamp time.Time
}

func (*LogEntry) Type() Type       { return TypeLogEntry }
func (*Watch) Type() Type          { return TypeWatch }
func (*ProcessFlow) Type() Type    { return TypeProcessFlow }
func (*ControlCommand) Type() Type { return TypeControlCommand }
func (*LogHeader) Type() Type      { return TypeLogHeader }

func (p *LogEntry) Time() time.Time       { return p.Timestamp }
func (p *Watch) Time() time.Time          { return p.Timestamp }
func (p *ProcessFlow) Time() time.Time    { return p.Timestamp }
func (p *ControlCommand) Time() time.Time { return p.Timestamp }
func (p *LogHeader) Time() time.Time      { return p.Timestamp }

func (*LogEntry) sealed()       {}
func (*Watch) sealed()          {}
func (*ProcessFlow) sealed()    {}
func (*ControlCommand) sealed() {}
func (*LogHeader) sealed()      {}
