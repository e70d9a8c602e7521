package core

import "strings"

// Color represents a foreground color for a screen cell.
// The platform maps each value to an ANSI 256-color code.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

var colorNames = map[string]Color{
	"default":  ColorDefault,
	"red":      ColorRed,
	"rose":     ColorBrightRed,
	"green":    ColorGreen,
	"emerald":  ColorBrightGreen,
	"lime":     ColorBrightGreen,
	"teal":     ColorCyan,
	"yellow":   ColorYellow,
	"amber":    ColorBrightYellow,
	"blue":     ColorBlue,
	"sky":      ColorBrightBlue,
	"indigo":   ColorBlue,
	"violet":   ColorMagenta,
	"magenta":  ColorMagenta,
	"fuchsia":  ColorBrightMagenta,
	"pink":     ColorBrightMagenta,
	"cyan":     ColorBrightCyan,
	"white":    ColorBrightWhite,
	"orange":   ColorOrange,
	"gray":     ColorGray,
	"slate":    ColorGray,
}

// ParseColor resolves a color name from content catalogs.
// Unknown names map to ColorDefault.
func ParseColor(name string) Color {
	if c, ok := colorNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return ColorDefault
}
