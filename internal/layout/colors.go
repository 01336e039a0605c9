package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Lighten shifts every channel up by pct percent of the 255 range,
// clamped. The math is additive per channel, not perceptual; callers
// wanting perceptual uniformity should configure explicit styles.
func Lighten(hex string, pct float64) string {
	r, g, b := parseHex(hex)
	delta := int(pct * 2.55)
	return formatHex(clampChannel(r+delta), clampChannel(g+delta), clampChannel(b+delta))
}

// Darken shifts every channel down by pct percent of the 255 range,
// clamped.
func Darken(hex string, pct float64) string {
	r, g, b := parseHex(hex)
	delta := int(pct * 2.55)
	return formatHex(clampChannel(r-delta), clampChannel(g-delta), clampChannel(b-delta))
}

func parseHex(hex string) (int, int, int) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return 0, 0, 0
	}
	r, err1 := strconv.ParseInt(s[0:2], 16, 0)
	g, err2 := strconv.ParseInt(s[2:4], 16, 0)
	b, err3 := strconv.ParseInt(s[4:6], 16, 0)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0
	}
	return int(r), int(g), int(b)
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func formatHex(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
