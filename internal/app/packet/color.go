package packet

// Color is an RGBA color
type Color struct {
	R, G, B, A uint8
}

// Transparent is the zero color
var Transparent = Color{}

// Pack packs the color with R in the lowest byte: R | G<<8 | B<<16 | A<<24
func (c Color) Pack() uint32 {
	return uint32(c.R) | uint32(c.G)<<8 | uint32(c.B)<<16 | uint32(c.A)<<24
}

// UnpackColor is the inverse of Color.Pack
func UnpackColor(v uint32) Color {
	return Color{
		R: uint8(v),
		G: uint8(v >> 8),
		B: uint8(v >> 16),
		A: uint8(v >> 24),
	}
}
