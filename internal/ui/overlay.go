package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlayCenter draws fg centered on top of bg, which is w by h cells.
func overlayCenter(bg, fg string, w, h int) string {
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < h {
		bgLines = append(bgLines, "")
	}
	fgLines := strings.Split(fg, "\n")
	fgW := 0
	for _, ln := range fgLines {
		fgW = max(fgW, ansi.StringWidth(ln))
	}
	fgW = min(fgW, w)
	if fgW == 0 {
		return bg
	}

	x := max(0, (w-fgW)/2)
	y := max(0, (h-len(fgLines))/2)
	for i, fgLine := range fgLines {
		if y+i >= len(bgLines) {
			break
		}
		bgLine := bgLines[y+i]
		if n := ansi.StringWidth(bgLine); n < w {
			bgLine += strings.Repeat(" ", w-n)
		}
		if n := ansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			fgLine = ansi.Cut(fgLine, 0, fgW)
		}
		bgLines[y+i] = ansi.Cut(bgLine, 0, x) + fgLine + ansi.Cut(bgLine, x+fgW, w)
	}
	return strings.Join(bgLines, "\n")
}
