package slot

import (
	"strings"

	"github.com/pfrederiksen/smartplay-booking/internal/logger"
)

// AvailableLabel is the text a slot shows when it can be rented.
const AvailableLabel = "可供租订"

// Inspector reads the two properties the selector needs from a slot handle.
type Inspector[H any] interface {
	// Text returns the slot's display text.
	Text(h H) string
	// Checkable reports whether the slot carries the selectable marker.
	Checkable(h H) bool
}

// Selection is the outcome of a scan.
type Selection struct {
	Found  bool
	First  int
	Second int
	// Skipped holds the left index of every pair that was available
	// but not checkable.
	Skipped []int
}

// Indices returns the selected pair, or nil when nothing was found.
func (s Selection) Indices() []int {
	if !s.Found {
		return nil
	}
	return []int{s.First, s.Second}
}

// Available reports whether a slot's text marks it as rentable.
func Available(text string) bool {
	return strings.Contains(text, AvailableLabel)
}

// Describe returns the first non-empty line of a slot's text, which is the
// time range shown on the page.
func Describe(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}

// Select scans pairs (i, i+1) with both indices inside [start, start+window)
// and inside slots. The first pair that is available and checkable wins.
func Select[H any](slots []H, in Inspector[H], start, window int) Selection {
	var sel Selection

	start = max(start, 0)
	window = max(window, 0)
	// Compare before adding so huge values cannot overflow.
	end := len(slots)
	if window < end-start {
		end = start + window
	}

	for i := start; i < end-1; i++ {
		a, b := slots[i], slots[i+1]

		if !Available(in.Text(a)) || !Available(in.Text(b)) {
			continue
		}
		if !in.Checkable(a) || !in.Checkable(b) {
			logger.Info("Slots available but not checkable", logger.Fields{
				"first":  i,
				"second": i + 1,
			})
			sel.Skipped = append(sel.Skipped, i)
			continue
		}

		sel.Found = true
		sel.First = i
		sel.Second = i + 1
		return sel
	}

	return sel
}
