package announce

import (
	"fmt"
	"strings"
)

// Color is a named text colour hint passed along with the announcement
// text. How it is displayed is up to the receiving client.
type Color string

const (
	Black       Color = "black"
	DarkBlue    Color = "dark_blue"
	DarkGreen   Color = "dark_green"
	DarkAqua    Color = "dark_aqua"
	DarkRed     Color = "dark_red"
	DarkPurple  Color = "dark_purple"
	Gold        Color = "gold"
	Gray        Color = "gray"
	DarkGray    Color = "dark_gray"
	Blue        Color = "blue"
	Green       Color = "green"
	Aqua        Color = "aqua"
	Red         Color = "red"
	LightPurple Color = "light_purple"
	Yellow      Color = "yellow"
	White       Color = "white"
)

// DefaultColor is used when no colour is configured.
const DefaultColor = Yellow

var colors = map[Color]struct{}{
	Black: {}, DarkBlue: {}, DarkGreen: {}, DarkAqua: {},
	DarkRed: {}, DarkPurple: {}, Gold: {}, Gray: {},
	DarkGray: {}, Blue: {}, Green: {}, Aqua: {},
	Red: {}, LightPurple: {}, Yellow: {}, White: {},
}

// ParseColor validates a colour name. An empty string is DefaultColor.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultColor, nil
	}
	c := Color(s)
	if _, ok := colors[c]; !ok {
		return DefaultColor, fmt.Errorf("unknown color: %q", s)
	}
	return c, nil
}
