package bridge

import (
	"strconv"
	"strings"

	"inspectd/internal/app/packet"
)

var namedColors = map[string]packet.Color{
	"black":       {R: 0x00, G: 0x00, B: 0x00, A: 0xFF},
	"white":       {R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	"red":         {R: 0xFF, G: 0x00, B: 0x00, A: 0xFF},
	"green":       {R: 0x00, G: 0x80, B: 0x00, A: 0xFF},
	"lime":        {R: 0x00, G: 0xFF, B: 0x00, A: 0xFF},
	"blue":        {R: 0x00, G: 0x00, B: 0xFF, A: 0xFF},
	"yellow":      {R: 0xFF, G: 0xFF, B: 0x00, A: 0xFF},
	"orange":      {R: 0xFF, G: 0xA5, B: 0x00, A: 0xFF},
	"purple":      {R: 0x80, G: 0x00, B: 0x80, A: 0xFF},
	"magenta":     {R: 0xFF, G: 0x00, B: 0xFF, A: 0xFF},
	"cyan":        {R: 0x00, G: 0xFF, B: 0xFF, A: 0xFF},
	"gray":        {R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
	"grey":        {R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
	"silver":      {R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF},
	"pink":        {R: 0xFF, G: 0xC0, B: 0xCB, A: 0xFF},
	"brown":       {R: 0xA5, G: 0x2A, B: 0x2A, A: 0xFF},
	"navy":        {R: 0x00, G: 0x00, B: 0x80, A: 0xFF},
	"teal":        {R: 0x00, G: 0x80, B: 0x80, A: 0xFF},
	"transparent": packet.Transparent,
}

// ParseColor accepts #RGB, #RRGGBB, #AARRGGBB and color names. Anything it
// cannot parse is transparent.
func ParseColor(s string) packet.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return packet.Transparent
	}

	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return packet.Transparent
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return packet.Transparent
	}

	switch len(hex) {
	case 3:
		return packet.Color{
			R: uint8(v>>8&0xF) * 0x11,
			G: uint8(v>>4&0xF) * 0x11,
			B: uint8(v&0xF) * 0x11,
			A: 0xFF,
		}
	case 6:
		return packet.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
	case 8:
		return packet.Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
	default:
		return packet.Transparent
	}
}
