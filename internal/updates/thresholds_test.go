package updates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThresholds_Resolve(t *testing.T) {
	thresholds := DefaultThresholds()

	tests := []struct {
		count int
		want  string
	}{
		{0, "#a9a9a9"},  // darkgray
		{9, "#a9a9a9"},  // darkgray
		{10, "#00ff00"}, // good
		{19, "#00ff00"}, // good
		{20, "#ffff00"}, // degraded
		{39, "#ffa500"}, // orange
		{40, "#ff0000"}, // bad
		{100, "#ff0000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, thresholds.Resolve(tt.count), "count=%d", tt.count)
	}
}

func TestThresholds_ResolveBelowLowestBoundary(t *testing.T) {
	thresholds := Thresholds{{Value: 5, Color: "good"}}
	assert.Equal(t, "", thresholds.Resolve(3))
	assert.Equal(t, "#00ff00", thresholds.Resolve(5))
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{}.Validate())
	assert.Error(t, Thresholds{{Value: 10, Color: "a"}, {Value: 0, Color: "b"}}.Validate())
	assert.Error(t, Thresholds{{Value: 10, Color: "a"}, {Value: 10, Color: "b"}}.Validate())
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#a9a9a9", ColorHex("darkgray"))
	assert.Equal(t, "#ff0000", ColorHex("bad"))
	assert.Equal(t, "#123456", ColorHex("#123456"))
	assert.Equal(t, "", ColorHex(""))
	// Unknown names pass through for the block's color field.
	assert.Equal(t, "tomato", ColorHex("tomato"))
}
