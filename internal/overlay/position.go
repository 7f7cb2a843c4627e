package overlay

// Position anchors the foreground on one axis of the background. Top and
// Bottom apply to the vertical axis, Left and Right to the horizontal one and
// Center to both.
type Position int

const (
	Top Position = iota + 1
	Right
	Bottom
	Left
	Center
)
