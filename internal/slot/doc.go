// Package slot picks two consecutive bookable time slots from a facility page.
//
// The selector works on opaque handles through the Inspector interface, so it
// never depends on a particular browser or HTML library. It scans adjacent
// pairs left to right inside a window and returns the first pair whose slots
// are both available and checkable.
package slot
