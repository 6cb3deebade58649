// Package calendar renders a confirmed booking as an iCalendar entry.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/smartplay-booking/internal/booking"
)

// ErrNotBooked is returned for results that did not end in a booking.
var ErrNotBooked = errors.New("result is not a successful booking")

var clockPattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)

// GenerateICS generates an iCalendar (.ics) file for a successful booking.
// The event spans from the first selected slot's start to the last slot's
// end; when the slot text carries no times it becomes an all-day event.
func GenerateICS(r *booking.Result, loc *time.Location, now time.Time) (string, error) {
	if r.Status != booking.StatusSuccess {
		return "", ErrNotBooked
	}
	day, err := time.ParseInLocation("2006-01-02", r.TargetDate, loc)
	if err != nil {
		return "", fmt.Errorf("parsing target date %q: %w", r.TargetDate, err)
	}

	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//SmartPLAY Booking//smartplay-booking//ZH\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")
	ics.WriteString("BEGIN:VEVENT\r\n")

	ics.WriteString(fmt.Sprintf("UID:%s-%s@smartplay.lcsd.gov.hk\r\n", r.TargetDate, indexKey(r.SlotIndices)))
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	start, end, ok := span(r.SelectedSlots, day)
	if ok {
		ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(start)))
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))
	} else {
		ics.WriteString(fmt.Sprintf("DTSTART;VALUE=DATE:%s\r\n", day.Format("20060102")))
		ics.WriteString(fmt.Sprintf("DTEND;VALUE=DATE:%s\r\n", day.AddDate(0, 0, 1).Format("20060102")))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(fmt.Sprintf("%s - %s", r.Venue, r.FacilityType))))

	description := fmt.Sprintf("时段: %s\n用户: %s", strings.Join(r.SelectedSlots, ", "), r.Username)
	ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(description)))
	ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(r.Venue)))
	ics.WriteString(fmt.Sprintf("URL:%s\r\n", booking.HomeURL))

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String(), nil
}

// span reads the first clock time of the first slot and the last clock time
// of the last slot.
func span(slots []string, day time.Time) (time.Time, time.Time, bool) {
	if len(slots) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first := clockPattern.FindAllStringSubmatch(slots[0], -1)
	last := clockPattern.FindAllStringSubmatch(slots[len(slots)-1], -1)
	if len(first) == 0 || len(last) == 0 {
		return time.Time{}, time.Time{}, false
	}

	start := at(day, first[0])
	end := at(day, last[len(last)-1])
	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func at(day time.Time, m []string) time.Time {
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func indexKey(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, "-")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// RFC 5545 text escaping
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
