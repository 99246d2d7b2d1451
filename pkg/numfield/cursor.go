package numfield

import (
	"github.com/rivo/uniseg"
)

// SelectionControl is a text control with an offset-based selection API.
// Offsets count runes.
type SelectionControl interface {
	SelectionStart() int
	SetSelectionRange(start, end int)
}

// ColumnControl is the fallback for controls that only report the caret as
// a screen column. Columns are terminal cells, so wide graphemes occupy
// more than one.
type ColumnControl interface {
	Text() string
	CursorColumn() int
	SetCursorColumn(col int)
}

// CursorOffset reads the caret position of ctrl as a rune offset. Controls
// implementing neither interface report 0.
func CursorOffset(ctrl any) int {
	switch c := ctrl.(type) {
	case SelectionControl:
		return c.SelectionStart()
	case ColumnControl:
		return columnToOffset(c.Text(), c.CursorColumn())
	}
	return 0
}

// SetCursorOffset moves the caret of ctrl to a rune offset and collapses
// any selection.
func SetCursorOffset(ctrl any, offset int) {
	switch c := ctrl.(type) {
	case SelectionControl:
		c.SetSelectionRange(offset, offset)
	case ColumnControl:
		c.SetCursorColumn(offsetToColumn(c.Text(), offset))
	}
}

// columnToOffset converts a screen column into a rune offset. A column in
// the middle of a wide grapheme resolves to the grapheme's start.
func columnToOffset(text string, col int) int {
	if col <= 0 {
		return 0
	}
	offset, width := 0, 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if width+w > col {
			return offset
		}
		width += w
		offset += len([]rune(cluster))
	}
	return offset
}

// offsetToColumn converts a rune offset into a screen column
func offsetToColumn(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	runes := []rune(text)
	if offset > len(runes) {
		offset = len(runes)
	}
	return uniseg.StringWidth(string(runes[:offset]))
}
