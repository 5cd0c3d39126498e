package updates

import (
	"fmt"
	"sort"
	"strings"
)

// Threshold is one boundary in the count-to-color table.
type Threshold struct {
	Value int    `toml:"value" json:"value"`
	Color string `toml:"color" json:"color"`
}

// Thresholds is an ordered count-to-color table. The color for a count
// c is the color of the highest boundary less than or equal to c.
type Thresholds []Threshold

// DefaultThresholds returns the reference table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		{Value: 0, Color: "darkgray"},
		{Value: 10, Color: "good"},
		{Value: 20, Color: "degraded"},
		{Value: 30, Color: "orange"},
		{Value: 40, Color: "bad"},
	}
}

// namedColors maps the symbolic color names to hex values.
var namedColors = map[string]string{
	"darkgray": "#a9a9a9",
	"good":     "#00ff00",
	"degraded": "#ffff00",
	"orange":   "#ffa500",
	"bad":      "#ff0000",
}

// Resolve returns the hex color for a count, or empty when the count is
// below every boundary.
func (t Thresholds) Resolve(count int) string {
	color := ""
	for _, th := range t {
		if count >= th.Value {
			color = th.Color
		} else {
			break
		}
	}
	return ColorHex(color)
}

// Validate checks the table is non-empty with strictly ascending
// boundaries.
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("threshold table is empty")
	}
	if !sort.SliceIsSorted(t, func(i, j int) bool { return t[i].Value < t[j].Value }) {
		return fmt.Errorf("threshold boundaries must be ascending")
	}
	for i := 1; i < len(t); i++ {
		if t[i].Value == t[i-1].Value {
			return fmt.Errorf("duplicate threshold boundary %d", t[i].Value)
		}
	}
	return nil
}

// ColorHex resolves a symbolic color name to hex; hex values and
// unknown names pass through unchanged.
func ColorHex(name string) string {
	if name == "" || strings.HasPrefix(name, "#") {
		return name
	}
	if hex, ok := namedColors[strings.ToLower(name)]; ok {
		return hex
	}
	return name
}
