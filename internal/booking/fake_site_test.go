package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/smartplay-booking/internal/scraper"
)

// fakeSite records every call and serves a canned facility page.
type fakeSite struct {
	calls []string

	// queueAfterLogins is the login count at which a queue number appears.
	queueAfterLogins int
	logins           int

	queueHasData   bool
	queueErr       error
	waitingRoom    []bool // successive WaitingRoomVisible answers
	html           string
	preselected    int
	failButton     string
	openFacilities string // play date passed to OpenFacility
	clicked        []int
	buttons        []Button
}

func (f *fakeSite) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeSite) OpenHome(context.Context) error {
	f.record("home")
	return nil
}

func (f *fakeSite) Login(_ context.Context, username, password string) error {
	f.logins++
	f.record("login %s", username)
	return nil
}

func (f *fakeSite) QueueNumber() (string, bool) {
	if f.queueAfterLogins > 0 && f.logins >= f.queueAfterLogins {
		return "1024", true
	}
	return "", false
}

func (f *fakeSite) QueueStatus(_ context.Context, queueNum string) (bool, error) {
	f.record("queue %s", queueNum)
	return f.queueHasData, f.queueErr
}

func (f *fakeSite) WaitingRoomVisible(context.Context) (bool, error) {
	f.record("waiting-room")
	if len(f.waitingRoom) == 0 {
		return false, nil
	}
	v := f.waitingRoom[0]
	f.waitingRoom = f.waitingRoom[1:]
	return v, nil
}

func (f *fakeSite) OpenFacilitiesMenu(context.Context) error {
	f.record("menu")
	return nil
}

func (f *fakeSite) OpenFacility(_ context.Context, playDate string) error {
	f.openFacilities = playDate
	f.record("facility %s", playDate)
	return nil
}

func (f *fakeSite) ClearSelections(context.Context) (int, error) {
	f.record("clear")
	return f.preselected, nil
}

func (f *fakeSite) Slots(context.Context) (*scraper.Page, error) {
	f.record("slots")
	return scraper.ParseString(f.html)
}

func (f *fakeSite) ClickSlot(_ context.Context, index int) error {
	f.clicked = append(f.clicked, index)
	f.record("slot %d", index)
	return nil
}

func (f *fakeSite) ClickButton(_ context.Context, b Button) error {
	f.record("button %s#%d", b.Name, b.Nth)
	if b.Name == f.failButton {
		return fmt.Errorf("button %q not found", b.Name)
	}
	f.buttons = append(f.buttons, b)
	return nil
}

// slotPage builds facility HTML from compact specs: "A+" available and
// checkable, "A-" available but not checkable, "R" rented.
func slotPage(specs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i, spec := range specs {
		label := "已租用"
		class := "session-tag-box"
		switch spec {
		case "A+":
			label = "可供租订"
			class += " session-tag-box-special-primary"
		case "A-":
			label = "可供租订"
		}
		fmt.Fprintf(&b, "<div class=\"facilities-sc-content-all-item\"><div>%02d:00 - %02d:00</div>\n<div class=\"%s\">%s</div></div>",
			7+i, 8+i, class, label)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// testClock advances on every sleep so runs finish instantly.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Sleep(_ context.Context, d time.Duration) error {
	c.now = c.now.Add(d)
	return nil
}

type noWait struct{ err error }

func (w noWait) Wait(context.Context) error { return w.err }
