package tui

import "github.com/mattn/go-runewidth"

const ellipsis = "…"

// truncateEnd cuts s to at most limit terminal cells, ending in an ellipsis
// when anything was dropped. Wide runes count as two cells.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	return runewidth.Truncate(s, limit, ellipsis)
}

// truncateMiddle keeps both ends of s around a single ellipsis. Used for
// URLs, where host and slug both matter.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}

	keep := limit - 1
	head := runewidth.Truncate(s, keep/2, "")
	return head + ellipsis + tailCells(s, keep-runewidth.StringWidth(head))
}

// tailCells returns the longest suffix of s that fits in n cells.
func tailCells(s string, n int) string {
	r := []rune(s)
	width := 0
	i := len(r)
	for i > 0 {
		w := runewidth.RuneWidth(r[i-1])
		if width+w > n {
			break
		}
		width += w
		i--
	}
	return string(r[i:])
}
