// Package bar implements a minimal i3bar-protocol status line host.
//
// The engine owns an ordered list of modules, caches each module's
// rendered blocks until its interval elapses, and re-renders a module
// out of band when it requests a refresh. Frames are written to an
// io.Writer following the i3bar JSON protocol: a header object, then
// an endless array of block arrays.
package bar

import "time"

// Block is a single segment of the status line, serialized per the
// i3bar protocol.
type Block struct {
	Name      string `json:"name,omitempty"`
	Instance  string `json:"instance,omitempty"`
	FullText  string `json:"full_text"`
	ShortText string `json:"short_text,omitempty"`
	Color     string `json:"color,omitempty"`
	Urgent    bool   `json:"urgent,omitempty"`
	Separator *bool  `json:"separator,omitempty"`
	Markup    string `json:"markup,omitempty"`
}

// NoSeparator returns a pointer suitable for Block.Separator when a
// block should hug the one that follows it.
func NoSeparator() *bool {
	v := false
	return &v
}

// Module produces the blocks for one section of the status line.
type Module interface {
	// Name identifies the module in logs, block names, and refresh requests.
	Name() string

	// Render produces the module's current blocks. A nil or empty result
	// hides the module for this frame.
	Render() []Block

	// Interval is how long rendered blocks stay cached before the engine
	// re-renders. Zero means cache forever: the module is only re-rendered
	// when it requests a refresh.
	Interval() time.Duration
}
