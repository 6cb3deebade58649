package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/smartplay-booking/internal/logger"
	"github.com/pfrederiksen/smartplay-booking/internal/release"
	"github.com/pfrederiksen/smartplay-booking/internal/scraper"
	"github.com/pfrederiksen/smartplay-booking/internal/slot"
)

// ErrNoSlots is recorded when no bookable pair is found.
var ErrNoSlots = errors.New("No available consecutive slots found") //nolint:staticcheck // shown verbatim in the summary

// ErrNoQueueNumber is returned when the site never issues a queue number.
var ErrNoQueueNumber = errors.New("no queue number received")

var errQueuePending = errors.New("queue number pending")

// Params configures one run.
type Params struct {
	Username string
	Password string

	Venue        string
	FacilityType string

	Location  *time.Location
	DaysAhead int

	StartIndex int
	Window     int

	QueuePollInterval  time.Duration
	QueuePollLimit     int
	MaxLogins          int
	WaitingRoomTimeout time.Duration
}

// DefaultParams returns the parameters for the Sunday evening booking.
func DefaultParams() Params {
	loc, err := time.LoadLocation(release.DefaultZone)
	if err != nil {
		loc = time.FixedZone("HKT", 8*60*60)
	}
	return Params{
		Venue:              "石塘咀体育馆",
		FacilityType:       "舞蹈室/活动室",
		Location:           loc,
		DaysAhead:          6,
		StartIndex:         10,
		Window:             5,
		QueuePollInterval:  time.Second,
		QueuePollLimit:     100,
		MaxLogins:          3,
		WaitingRoomTimeout: time.Hour,
	}
}

// FormStep is one click in the confirmation form.
type FormStep struct {
	Label  string
	Button Button
	Pause  time.Duration
}

// ConfirmationSteps walks from the slot page to the final agreement.
var ConfirmationSteps = []FormStep{
	{Label: "Clicking continue button", Button: Button{Name: "继续"}, Pause: 2 * time.Second},
	{Label: "Declining extra equipment", Button: Button{Name: "否", Exact: true}, Pause: time.Second},
	{Label: "Proceeding to payment", Button: Button{Name: "继续", Exact: true}, Pause: 2 * time.Second},
	{Label: "Completing health declaration", Button: Button{Name: "未能提供"}, Pause: 500 * time.Millisecond},
	{Label: "Completing health declaration", Button: Button{Name: "未能提供", Nth: 1}, Pause: 500 * time.Millisecond},
	{Label: "Confirming and agreeing", Button: Button{Name: "确认并同意"}},
}

// Waiter blocks until the release time.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Runner drives a Site through one booking attempt.
type Runner struct {
	Site   Site
	Waiter Waiter
	Params Params

	// Now and Sleep default to the real clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	result *Result
}

// NewRunner creates a Runner with the real clock.
func NewRunner(site Site, waiter Waiter, params Params) *Runner {
	return &Runner{
		Site:   site,
		Waiter: waiter,
		Params: params,
		Now:    time.Now,
		Sleep:  release.Sleep,
	}
}

// Run performs the booking and returns its result. Failures are recorded in
// the result; Run itself never fails.
func (r *Runner) Run(ctx context.Context) *Result {
	r.result = NewResult(r.Now(), r.Params)

	if err := r.run(ctx); err != nil {
		r.result.Fail(r.Now(), err.Error())
		logger.Error("Booking failed", logger.Fields{"status": r.result.Status}, err)
		logger.IncrCounter("booking.failed")
	} else {
		r.result.Succeed(r.Now())
		logger.Info("Booking completed successfully", logger.Fields{
			"slots": r.result.SelectedSlots,
		})
		logger.IncrCounter("booking.succeeded")
	}

	return r.result
}

func (r *Runner) run(ctx context.Context) error {
	if err := r.stage("wait", func() error { return r.Waiter.Wait(ctx) }); err != nil {
		return fmt.Errorf("waiting for release: %w", err)
	}

	if err := r.stage("login", func() error {
		if err := r.Site.OpenHome(ctx); err != nil {
			return fmt.Errorf("opening home page: %w", err)
		}
		return r.login(ctx)
	}); err != nil {
		return err
	}

	if err := r.stage("queue", func() error { return r.queue(ctx) }); err != nil {
		return err
	}

	var page *scraper.Page
	if err := r.stage("facility", func() error {
		var err error
		page, err = r.openFacility(ctx)
		return err
	}); err != nil {
		return err
	}

	sel := slot.Select[scraper.Slot](page.Slots, scraper.Inspector{}, r.Params.StartIndex, r.Params.Window)
	if !sel.Found {
		return ErrNoSlots
	}

	return r.stage("confirm", func() error { return r.confirm(ctx, page, sel) })
}

func (r *Runner) stage(name string, fn func() error) error {
	start := r.Now()
	err := fn()
	logger.RecordTiming("stage."+name, r.Now().Sub(start))
	return err
}

func (r *Runner) login(ctx context.Context) error {
	logger.Info("Logging in", logger.Fields{"username": r.Params.Username})
	if err := r.Site.Login(ctx, r.Params.Username, r.Params.Password); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	now := r.Now()
	r.result.LoginTime = &now
	logger.IncrCounter("logins")
	return nil
}

// queue waits for a queue number, logging in again after each unanswered
// poll budget, then clears the virtual waiting room if the queue has data.
func (r *Runner) queue(ctx context.Context) error {
	queueNum, err := r.awaitQueueNumber(ctx)
	if err != nil {
		return err
	}
	logger.Info("Queue number found", logger.Fields{"queue_num": queueNum})

	hasData, err := r.Site.QueueStatus(ctx, queueNum)
	if err != nil {
		logger.Warn("Queue status unavailable, checking waiting room anyway", logger.Fields{
			"queue_num": queueNum,
			"error":     err.Error(),
		})
		hasData = true
	}
	if !hasData {
		return nil
	}

	return r.waitOutWaitingRoom(ctx)
}

func (r *Runner) awaitQueueNumber(ctx context.Context) (string, error) {
	for logins := 1; ; logins++ {
		var queueNum string
		op := func() error {
			if n, ok := r.Site.QueueNumber(); ok {
				queueNum = n
				return nil
			}
			return errQueuePending
		}
		notify := func(error, time.Duration) {
			logger.IncrCounter("queue.polls")
			logger.Debug("Waiting for queue number", nil)
		}

		b := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(r.Params.QueuePollInterval), uint64(max(r.Params.QueuePollLimit, 0))),
			ctx,
		)
		err := backoff.RetryNotify(op, b, notify)
		if err == nil {
			return queueNum, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		if logins >= r.Params.MaxLogins {
			return "", fmt.Errorf("%w after %d logins", ErrNoQueueNumber, logins)
		}
		logger.Warn("No queue number yet, logging in again", logger.Fields{
			"polls":  r.Params.QueuePollLimit,
			"logins": logins,
		})
		if err := r.login(ctx); err != nil {
			return "", err
		}
	}
}

func (r *Runner) waitOutWaitingRoom(ctx context.Context) error {
	visible, err := r.Site.WaitingRoomVisible(ctx)
	if err != nil {
		return fmt.Errorf("checking waiting room: %w", err)
	}
	if !visible {
		return nil
	}

	logger.Info("Virtual waiting room found, waiting", nil)
	deadline := r.Now().Add(r.Params.WaitingRoomTimeout)
	for visible {
		if !r.Now().Before(deadline) {
			return fmt.Errorf("virtual waiting room still shown after %s", r.Params.WaitingRoomTimeout)
		}
		if err := r.Sleep(ctx, r.Params.QueuePollInterval); err != nil {
			return err
		}
		if visible, err = r.Site.WaitingRoomVisible(ctx); err != nil {
			return fmt.Errorf("checking waiting room: %w", err)
		}
	}
	logger.Info("Virtual waiting room disappeared, continuing", nil)
	return nil
}

func (r *Runner) openFacility(ctx context.Context) (*scraper.Page, error) {
	logger.Info("Navigating to facilities", nil)
	if err := r.Site.OpenFacilitiesMenu(ctx); err != nil {
		return nil, fmt.Errorf("opening facilities menu: %w", err)
	}
	if err := r.Sleep(ctx, 2*time.Second); err != nil {
		return nil, err
	}

	playDate := TargetDate(r.Now(), r.Params.Location, r.Params.DaysAhead)
	r.result.TargetDate = playDate
	logger.Info("Target date", logger.Fields{"play_date": playDate})

	if err := r.Site.OpenFacility(ctx, playDate); err != nil {
		return nil, fmt.Errorf("opening facility page: %w", err)
	}

	cleared, err := r.Site.ClearSelections(ctx)
	if err != nil {
		return nil, fmt.Errorf("clearing pre-selected slots: %w", err)
	}
	if cleared > 0 {
		logger.Info("Unchecked pre-selected tags", logger.Fields{"count": cleared})
	}

	page, err := r.Site.Slots(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading slots: %w", err)
	}
	logger.Info("Found time slots", logger.Fields{"count": len(page.Slots)})
	return page, nil
}

func (r *Runner) confirm(ctx context.Context, page *scraper.Page, sel slot.Selection) error {
	in := scraper.Inspector{}
	logger.Info("Selecting slots", logger.Fields{"first": sel.First, "second": sel.Second})

	for _, idx := range sel.Indices() {
		r.result.SlotIndices = append(r.result.SlotIndices, idx)
		r.result.SelectedSlots = append(r.result.SelectedSlots, slot.Describe(in.Text(page.Slots[idx])))

		if err := r.Site.ClickSlot(ctx, idx); err != nil {
			return fmt.Errorf("clicking slot %d: %w", idx, err)
		}
		if err := r.Sleep(ctx, 200*time.Millisecond); err != nil {
			return err
		}
	}

	for _, step := range ConfirmationSteps {
		logger.Info(step.Label, logger.Fields{"button": step.Button.Name})
		if err := r.Site.ClickButton(ctx, step.Button); err != nil {
			return fmt.Errorf("%s: %w", step.Label, err)
		}
		if step.Pause > 0 {
			if err := r.Sleep(ctx, step.Pause); err != nil {
				return err
			}
		}
	}

	return nil
}

// TargetDate returns the play date daysAhead days after now in loc, as
// YYYY-MM-DD.
func TargetDate(now time.Time, loc *time.Location, daysAhead int) string {
	return now.In(loc).AddDate(0, 0, daysAhead).Format("2006-01-02")
}
