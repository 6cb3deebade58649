package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// ItemSelector matches one time-slot entry on the facility page.
	ItemSelector = ".facilities-sc-content-all-item"
	// CheckableSelector marks a slot that can be ticked right now.
	CheckableSelector = ".session-tag-box-special-primary"
	// PreselectedSelector matches tags the page ticked on load.
	PreselectedSelector = ".session-tag-box-select"
)

// Slot is one time-slot entry. Index is its position among all items on
// the page, which is also its position in the live DOM.
type Slot struct {
	Index int
	sel   *goquery.Selection
}

// Page is a parsed facility selection page.
type Page struct {
	Slots       []Slot
	Preselected int
}

// Parse extracts time-slot items from facility page HTML.
func Parse(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := &Page{
		Preselected: doc.Find(PreselectedSelector).Length(),
	}
	doc.Find(ItemSelector).Each(func(i int, sel *goquery.Selection) {
		page.Slots = append(page.Slots, Slot{Index: i, sel: sel})
	})

	return page, nil
}

// ParseString is Parse for an in-memory snapshot.
func ParseString(html string) (*Page, error) {
	return Parse(strings.NewReader(html))
}

// Inspector reads slot text and markers; it satisfies slot.Inspector[Slot].
type Inspector struct{}

// Text returns the slot's text content.
func (Inspector) Text(s Slot) string {
	if s.sel == nil {
		return ""
	}
	return s.sel.Text()
}

// Checkable reports whether the slot contains the checkable marker.
func (Inspector) Checkable(s Slot) bool {
	if s.sel == nil {
		return false
	}
	return s.sel.Find(CheckableSelector).Length() > 0
}
