package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Composite places fg on top of bg. Positions are relative to bg, offsets
// shift the result and the foreground is kept inside bg where it fits.
// Both strings may contain ANSI escape sequences.
func Composite(fg, bg string, xPos, yPos Position, xOff, yOff int) string {
	fgLines, bgLines := lines(fg), lines(bg)
	fgWidth := width(fgLines)
	x, y := Origin(fg, bg, xPos, yPos, xOff, yOff)

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < y || i >= y+len(fgLines) {
			b.WriteString(bgLine)
			continue
		}
		fgLine := fgLines[i-y]
		left := ansi.Truncate(bgLine, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		b.WriteString(left)
		b.WriteString(fgLine)
		if w := ansi.StringWidth(fgLine); w < fgWidth {
			b.WriteString(strings.Repeat(" ", fgWidth-w))
		}
		b.WriteString(ansi.TruncateLeft(bgLine, x+fgWidth, ""))
	}
	return b.String()
}

// Origin returns the cell where Composite puts the top left corner of fg,
// e.g. to translate mouse coordinates into the foreground.
func Origin(fg, bg string, xPos, yPos Position, xOff, yOff int) (int, int) {
	fgLines, bgLines := lines(fg), lines(bg)
	x, y := offsets(fg, bg, xPos, yPos, xOff, yOff)
	return clamp(x, 0, width(bgLines)-width(fgLines)), clamp(y, 0, len(bgLines)-len(fgLines))
}

// offsets returns the top left corner of fg before clamping. Centering rounds
// each half down, so an odd remainder pushes the foreground left or up.
func offsets(fg, bg string, xPos, yPos Position, xOff, yOff int) (int, int) {
	fgLines, bgLines := lines(fg), lines(bg)
	fgWidth, bgWidth := width(fgLines), width(bgLines)

	var x, y int
	switch xPos {
	case Center:
		x = bgWidth/2 - fgWidth/2
	case Right:
		x = bgWidth - fgWidth
	}
	switch yPos {
	case Center:
		y = len(bgLines)/2 - len(fgLines)/2
	case Bottom:
		y = len(bgLines) - len(fgLines)
	}
	return x + xOff, y + yOff
}

// clamp keeps val in [lo, hi]. An empty range leaves val alone.
func clamp(val, lo, hi int) int {
	if lo > hi {
		return val
	}
	return min(max(val, lo), hi)
}

func lines(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
}

func width(ls []string) int {
	w := 0
	for _, l := range ls {
		w = max(w, ansi.StringWidth(l))
	}
	return w
}
