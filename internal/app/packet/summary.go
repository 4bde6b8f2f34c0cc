package packet

import (
	"fmt"
	"time"
)

// Summary is a flat, display-oriented view of any packet
type Summary struct {
	Kind      string    `json:"kind"`
	Level     string    `json:"level,omitempty"`
	App       string    `json:"app,omitempty"`
	Session   string    `json:"session,omitempty"`
	Host      string    `json:"host,omitempty"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}

// Summarize flattens a packet into a Summary
func Summarize(p Packet) Summary {
	s := Summary{
		Kind:      p.Type().String(),
		Timestamp: p.Time(),
	}

	switch v := p.(type) {
	case *LogEntry:
		s.Level = v.LogEntryType.String()
		s.App = v.AppName
		s.Session = v.SessionName
		s.Host = v.HostName
		s.Title = v.Title
	case *Watch:
		s.Level = v.WatchType.String()
		s.Title = fmt.Sprintf("%s = %s", v.Name, v.Value)
	case *ProcessFlow:
		s.Level = v.ProcessFlowType.String()
		s.Host = v.HostName
		s.Title = v.Title
	case *ControlCommand:
		s.Level = v.CommandType.String()
		s.Title = v.CommandType.String()
	case *LogHeader:
		s.App = v.AppName
		s.Host = v.HostName
		s.Title = fmt.Sprintf("connected: %s@%s", v.AppName, v.HostName)
	}

	return s
}
