package smartplay

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pfrederiksen/smartplay-booking/internal/booking"
)

const (
	BaseURL  = booking.SiteURL
	HomeURL  = booking.HomeURL
	queueAPI = "/rest/patron/api/v1/publ/queue"
)

// Facility identifies the venue and facility type searched on the court
// selection page.
type Facility struct {
	VenueID   int
	FatID     int
	VenueName string
	Districts []string
	TypeCode  string
	SportCode string
}

// DefaultFacility is the dance / activity room at Shek Tong Tsui Sports Centre.
func DefaultFacility() Facility {
	return Facility{
		VenueID:   207,
		FatID:     311,
		VenueName: "石塘咀体育馆",
		Districts: []string{"CW", "EN", "SN", "WCH"},
		TypeCode:  "DNRM",
		SportCode: "DAAC",
	}
}

// URL returns the court selection page for a play date (YYYY-MM-DD).
// Parameters keep the order the site itself uses.
func (f Facility) URL(playDate string) string {
	params := [][2]string{
		{"venueId", strconv.Itoa(f.VenueID)},
		{"fatId", strconv.Itoa(f.FatID)},
		{"venueName", f.VenueName},
		{"sessionIndex", "0"},
		{"dateIndex", "0"},
		{"playDate", playDate},
		{"district", strings.Join(f.Districts, ",")},
		{"typeCode", f.TypeCode},
		{"keywords", ""},
		{"sportCode", f.SportCode},
		{"frmFilterType", ""},
		{"isFree", "false"},
	}

	var q strings.Builder
	for i, p := range params {
		if i > 0 {
			q.WriteByte('&')
		}
		q.WriteString(p[0])
		q.WriteByte('=')
		q.WriteString(strings.ReplaceAll(url.QueryEscape(p[1]), "%2C", ","))
	}

	return BaseURL + "/facilities/select/court?" + q.String()
}

// QueueURL is the endpoint that issues a queue number after login.
func QueueURL() string {
	return BaseURL + queueAPI
}

// QueueStatusURL is the endpoint reporting the state of one queue number.
func QueueStatusURL(queueNum string) string {
	return QueueURL() + "/" + url.PathEscape(queueNum)
}

// IsQueueURL reports whether a request URL is the queue-issuing endpoint
// (not a per-number status lookup).
func IsQueueURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.TrimSuffix(u.Path, "/") == queueAPI
}
