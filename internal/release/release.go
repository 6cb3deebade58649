// Package release blocks a run until the booking release time.
//
// Reservations open at a fixed time of day in the venue's time zone. The
// Waiter polls the clock at a short interval rather than sleeping once, so
// progress can be logged while it waits.
package release

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/smartplay-booking/internal/logger"
)

const (
	DefaultTimeOfDay = "07:00"
	DefaultZone      = "Asia/Hong_Kong"
	DefaultInterval  = time.Second
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (24-hour).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q (want HH:MM): %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Waiter waits until a time of day in a fixed location.
type Waiter struct {
	At       TimeOfDay
	Location *time.Location
	Interval time.Duration

	// Now and Sleep default to the real clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewWaiter creates a Waiter polling once per second.
func NewWaiter(at TimeOfDay, loc *time.Location) *Waiter {
	return &Waiter{
		At:       at,
		Location: loc,
		Interval: DefaultInterval,
	}
}

func (w *Waiter) now() time.Time {
	if w.Now != nil {
		return w.Now().In(w.Location)
	}
	return time.Now().In(w.Location)
}

func (w *Waiter) sleep(ctx context.Context, d time.Duration) error {
	if w.Sleep != nil {
		return w.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Target returns today's release instant for the given moment.
func (w *Waiter) Target(now time.Time) time.Time {
	now = now.In(w.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), w.At.Hour, w.At.Minute, 0, 0, w.Location)
}

// Wait returns once the current time is at or after today's target. It only
// fails when ctx is cancelled.
func (w *Waiter) Wait(ctx context.Context) error {
	now := w.now()
	target := w.Target(now)

	if !now.Before(target) {
		logger.Info("Already past release time, proceeding immediately", logger.Fields{
			"release": w.At.String(),
			"zone":    w.Location.String(),
		})
		return nil
	}

	logger.Info("Waiting for release time", logger.Fields{
		"release": w.At.String(),
		"zone":    w.Location.String(),
		"minutes": int(target.Sub(now).Round(time.Minute).Minutes()),
	})

	lastMinute := -1
	for now.Before(target) {
		if err := w.sleep(ctx, w.Interval); err != nil {
			return err
		}
		now = w.now()

		if now.Second() == 0 && now.Minute() != lastMinute {
			lastMinute = now.Minute()
			logger.Info("Minutes until release", logger.Fields{
				"remaining": int(target.Sub(now).Minutes()),
			})
		}
	}

	logger.Info("Release time reached", logger.Fields{"at": now.Format("15:04:05.000")})
	return nil
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
