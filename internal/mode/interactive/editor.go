// ABOUTME: Text helpers for the single-line editor: grapheme-aware deletion and width truncation
// ABOUTME: Backspace removes a whole user-perceived character, including emoji ZWJ sequences

package interactive

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// dropLastGrapheme removes the final grapheme cluster of s.
func dropLastGrapheme(s string) string {
	last, pos := 0, 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		last = pos
		pos += len(cluster)
	}
	return s[:last]
}

// fitWidth truncates s to at most w terminal cells, marking the cut.
func fitWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return runewidth.Truncate(s, w, "…")
}

// tailWidth keeps the last w cells of s so the cursor end stays visible.
func tailWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= w {
		return s
	}
	return "…" + runewidth.TruncateLeft(s, runewidth.StringWidth(s)-w+1, "")
}
