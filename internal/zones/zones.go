// Package zones defines the linear path a realm travels through.
package zones

import "strings"

var order = []string{
	"village",
	"forest",
	"temple",
	"tower",
	"ruins",
}

var emojis = map[string]string{
	"village": "🏡",
	"forest":  "🌲",
	"temple":  "⛩️",
	"tower":   "🗼",
	"ruins":   "🏚️",
}

// Order returns the zones in progression order.
func Order() []string {
	return append([]string(nil), order...)
}

// Index returns the position of zone in the order, or -1.
func Index(zone string) int {
	for i, z := range order {
		if z == zone {
			return i
		}
	}
	return -1
}

// Contains reports whether zone is a registered zone.
func Contains(zone string) bool {
	return Index(zone) >= 0
}

// Next returns the zone after current. It returns false when current is
// unknown or already the last zone.
func Next(current string) (string, bool) {
	i := Index(current)
	if i < 0 || i+1 >= len(order) {
		return "", false
	}
	return order[i+1], true
}

// Last returns the final zone.
func Last() string {
	return order[len(order)-1]
}

// Title capitalises a zone name for display.
func Title(zone string) string {
	if zone == "" {
		return ""
	}
	return strings.ToUpper(zone[:1]) + zone[1:]
}

// Stop is one entry of the world map.
type Stop struct {
	Name    string
	Emoji   string
	Reached bool
	Current bool
}

// Map lists every zone, marking those reached up to and including current.
// An unknown current zone leaves every stop unreached.
func Map(current string) []Stop {
	idx := Index(current)
	stops := make([]Stop, 0, len(order))
	for i, z := range order {
		emoji, ok := emojis[z]
		if !ok {
			emoji = "⬜"
		}
		stops = append(stops, Stop{
			Name:    z,
			Emoji:   emoji,
			Reached: idx >= 0 && i <= idx,
			Current: i == idx,
		})
	}
	return stops
}
