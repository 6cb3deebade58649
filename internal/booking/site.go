package booking

import (
	"context"

	"github.com/pfrederiksen/smartplay-booking/internal/scraper"
)

// SmartPLAY entry points.
const (
	SiteURL = "https://www.smartplay.lcsd.gov.hk"
	HomeURL = SiteURL + "/home"
)

// Button identifies a button by its accessible name. Exact requires the
// whole name to match; Nth picks among several matches (0-based).
type Button struct {
	Name  string
	Exact bool
	Nth   int
}

// Site is the booking website as seen by a single browser tab.
type Site interface {
	OpenHome(ctx context.Context) error
	Login(ctx context.Context, username, password string) error

	// QueueNumber returns the queue token captured since the last login.
	QueueNumber() (string, bool)
	// QueueStatus fetches the queue entry and reports whether it carries data.
	QueueStatus(ctx context.Context, queueNum string) (bool, error)
	WaitingRoomVisible(ctx context.Context) (bool, error)

	OpenFacilitiesMenu(ctx context.Context) error
	// OpenFacility loads the facility page for a date (YYYY-MM-DD) and waits
	// for the slot list.
	OpenFacility(ctx context.Context, playDate string) error
	// ClearSelections unticks slots the page selected on load.
	ClearSelections(ctx context.Context) (int, error)
	Slots(ctx context.Context) (*scraper.Page, error)
	ClickSlot(ctx context.Context, index int) error
	ClickButton(ctx context.Context, b Button) error
}
