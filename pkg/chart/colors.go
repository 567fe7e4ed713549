package chart

import (
	"image/color"
	"strconv"
	"strings"
)

var (
	Background = color.RGBA{0x11, 0x11, 0x11, 0xff}
	Grid       = color.RGBA{0x33, 0x33, 0x33, 0xff}
	Axis       = color.RGBA{0x99, 0x99, 0x99, 0xff}
	Marker     = color.NRGBA{0xff, 0xff, 0xff, 0xb3}
	Neutral    = color.RGBA{0x88, 0x88, 0x88, 0xff}
)

// team colours of the 2018-2025 grid, keyed by a lowercase fragment of the team name
var teamColors = []struct {
	key string
	hex string
}{
	{"red bull", "3671C6"},
	{"ferrari", "E8002D"},
	{"mercedes", "27F4D2"},
	{"mclaren", "FF8000"},
	{"aston martin", "229971"},
	{"racing point", "F596C8"},
	{"force india", "F596C8"},
	{"alpine", "0093CC"},
	{"renault", "FFF500"},
	{"williams", "64C4FF"},
	{"alphatauri", "5E8FAA"},
	{"toro rosso", "469BFF"},
	{"rb", "6692FF"},
	{"racing bulls", "6692FF"},
	{"kick sauber", "52E252"},
	{"alfa romeo", "C92D4B"},
	{"sauber", "52E252"},
	{"haas", "B6BABD"},
}

// TeamColor picks the colour for a team: the provider's hex colour when it parses, then the
// static team table, then a neutral grey.
func TeamColor(team, hex string) color.RGBA {
	if c, ok := ParseHex(hex); ok {
		return c
	}
	name := strings.ToLower(strings.TrimSpace(team))
	if name == "" {
		return Neutral
	}
	for _, tc := range teamColors {
		if name == tc.key || (len(tc.key) > 2 && strings.Contains(name, tc.key)) {
			c, _ := ParseHex(tc.hex)
			return c
		}
	}
	return Neutral
}

// ParseHex parses "RRGGBB" or "#RRGGBB".
func ParseHex(hex string) (color.RGBA, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}
