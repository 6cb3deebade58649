// Package scraper parses SmartPLAY facility pages into time-slot handles.
//
// The browser hands over an HTML snapshot of the facility selection page; the
// scraper finds the time-slot items in page order and exposes their text and
// checkable marker to the slot selector.
package scraper
