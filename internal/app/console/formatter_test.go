package console

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspectd/internal/app/packet"
	"inspectd/internal/config"
	"inspectd/internal/config/logger"
)

func newFormatter(format string) *Formatter {
	cfg := config.DefaultConfig()
	cfg.Logging.Format = format

	return NewFormatter(cfg)
}

func Test_Formatter_Format(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 0, 500_000_000, time.Local)

	tests := []struct {
		name     string
		summary  packet.Summary
		contains []string
	}{
		{
			name:     "Log entry",
			summary:  packet.Summary{Kind: "LogEntry", Level: "Error", App: "shop", Title: "payment failed", Timestamp: ts},
			contains: []string{"10:30:00.500", "shop", "|", "Error", "payment failed"},
		},
		{
			name:     "Packet without app uses its kind",
			summary:  packet.Summary{Kind: "Watch", Level: "Integer", Title: "count = 3", Timestamp: ts},
			contains: []string{"Watch", "Integer", "count = 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := newFormatter(logger.ConsoleFormat).Format(tt.summary)

			assert.True(t, strings.HasSuffix(line, "\n"))

			for _, c := range tt.contains {
				assert.Contains(t, line, c)
			}
		})
	}
}

func Test_Formatter_FormatJSON(t *testing.T) {
	f := newFormatter(logger.JSONFormat)

	line := f.Format(packet.Summary{Kind: "LogEntry", App: "shop", Title: "hi"})

	var decoded packet.Summary
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))
	assert.Equal(t, "shop", decoded.App)
	assert.Equal(t, "hi", decoded.Title)
}

func Test_Formatter_PadsNames(t *testing.T) {
	f := newFormatter(logger.ConsoleFormat)

	f.Format(packet.Summary{App: "a-very-long-application"})
	assert.Equal(t, len("a-very-long-application"), f.maxNameLen)

	f.Format(packet.Summary{App: "shop", Title: "x"})
	assert.Equal(t, len("a-very-long-application"), f.maxNameLen, "shorter names keep the widest column")
}

func Test_Formatter_AppStyleIsStable(t *testing.T) {
	f := newFormatter(logger.ConsoleFormat)

	assert.Equal(t, f.appStyle("shop"), f.appStyle("shop"))
	assert.Equal(t, hashString("shop"), hashString("shop"))
	assert.GreaterOrEqual(t, hashString("a much longer name that may overflow"), 0)
}

func Test_Formatter_RenderBanner(t *testing.T) {
	var buf bytes.Buffer

	newFormatter(logger.ConsoleFormat).RenderBanner(&buf, "tail", []Field{
		{Label: "version:", Value: "1.2.3"},
		{Label: "listeners:", Value: "tcp, pipe"},
	})

	for _, c := range []string{"tail", "version:", "1.2.3", "tcp, pipe", "ctrl+c"} {
		assert.Contains(t, buf.String(), c)
	}

	buf.Reset()
	newFormatter(logger.JSONFormat).RenderBanner(&buf, "tail", nil)
	assert.Empty(t, buf.String())
}
