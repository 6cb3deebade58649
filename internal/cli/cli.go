package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/smartplay-booking/internal/booking"
	"github.com/pfrederiksen/smartplay-booking/internal/calendar"
	"github.com/pfrederiksen/smartplay-booking/internal/config"
	"github.com/pfrederiksen/smartplay-booking/internal/logger"
	"github.com/pfrederiksen/smartplay-booking/internal/notifier"
	"github.com/pfrederiksen/smartplay-booking/internal/release"
	"github.com/pfrederiksen/smartplay-booking/internal/smartplay"
	"github.com/pfrederiksen/smartplay-booking/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const notifyTimeout = 30 * time.Second

type options struct {
	envDir      string
	releaseTime string
	timezone    string
	noWait      bool
	startIndex  int
	window      int
	daysAhead   int
	venueID     int
	fatID       int
	venueName   string
	districts   []string
	typeCode    string
	sportCode   string
	facility    string
	notify      string
	dryRun      bool
	reportDir   string
	format      string
	headless    string
	verbose     bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	defaults := booking.DefaultParams()
	facility := smartplay.DefaultFacility()

	cmd := &cobra.Command{
		Use:   "smartplay-booking",
		Short: "Book two consecutive SmartPLAY facility slots the moment booking opens",
		Long: `Waits for the SmartPLAY release time, logs in, waits through the virtual queue,
picks the first two consecutive bookable slots in the target window and confirms
the booking. A summary is printed and pushed to Telegram (or another notifier).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.envDir, "env-dir", ".", "Directory holding .env files")
	f.StringVar(&opts.releaseTime, "release-time", release.DefaultTimeOfDay, "Time bookings open (HH:MM)")
	f.StringVar(&opts.timezone, "timezone", release.DefaultZone, "Time zone of the release time and play date")
	f.BoolVar(&opts.noWait, "no-wait", false, "Start immediately instead of waiting for the release time")
	f.IntVar(&opts.startIndex, "start-index", defaults.StartIndex, "Index of the first slot to consider")
	f.IntVar(&opts.window, "window", defaults.Window, "Number of slots, from start-index, a pair must fall within")
	f.IntVar(&opts.daysAhead, "days-ahead", defaults.DaysAhead, "Play date offset from today in days")
	f.IntVar(&opts.venueID, "venue-id", facility.VenueID, "SmartPLAY venue ID")
	f.IntVar(&opts.fatID, "fat-id", facility.FatID, "SmartPLAY facility type ID")
	f.StringVar(&opts.venueName, "venue-name", facility.VenueName, "Venue name shown in the search")
	f.StringSliceVar(&opts.districts, "district", facility.Districts, "District codes for the search")
	f.StringVar(&opts.typeCode, "type-code", facility.TypeCode, "Facility type code")
	f.StringVar(&opts.sportCode, "sport-code", facility.SportCode, "Sport code")
	f.StringVar(&opts.facility, "facility-type", defaults.FacilityType, "Facility type label for the summary")
	f.StringVar(&opts.notify, "notify", notifier.ChannelTelegram, "Notifier: telegram, twitter, dry-run or none")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Print the notification instead of sending it")
	f.StringVar(&opts.reportDir, "report-dir", "", "Write a JSON report of the run to this directory")
	f.StringVar(&opts.format, "format", string(FormatText), "Output format: text or json")
	f.StringVar(&opts.headless, "headless", "auto", "Run Chrome headless: auto (production only), true or false")
	f.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	return cmd
}

// params turns flags into run parameters.
func (o *options) params(cfg *config.Config) (booking.Params, *release.Waiter, error) {
	p := booking.DefaultParams()

	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return p, nil, fmt.Errorf("loading time zone %q: %w", o.timezone, err)
	}
	at, err := release.ParseTimeOfDay(o.releaseTime)
	if err != nil {
		return p, nil, err
	}
	if o.window < 2 {
		return p, nil, fmt.Errorf("--window must be at least 2, got %d", o.window)
	}
	if o.startIndex < 0 {
		return p, nil, fmt.Errorf("--start-index must not be negative, got %d", o.startIndex)
	}

	p.Username = cfg.Username
	p.Password = cfg.Password
	p.Venue = o.venueName
	p.FacilityType = o.facility
	p.Location = loc
	p.DaysAhead = o.daysAhead
	p.StartIndex = o.startIndex
	p.Window = o.window

	return p, release.NewWaiter(at, loc), nil
}

func (o *options) facilityFilter() smartplay.Facility {
	return smartplay.Facility{
		VenueID:   o.venueID,
		FatID:     o.fatID,
		VenueName: o.venueName,
		Districts: o.districts,
		TypeCode:  o.typeCode,
		SportCode: o.sportCode,
	}
}

func (o *options) headlessMode(cfg *config.Config) (bool, error) {
	switch strings.ToLower(o.headless) {
	case "auto", "":
		return cfg.Headless(), nil
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --headless value %q (want auto, true or false)", o.headless)
	}
}

// notifier builds the chosen channel. Dry-run output goes to stderr so
// stdout carries only the result.
func (o *options) notifier(cfg *config.Config, stderr io.Writer) (notifier.Notifier, error) {
	channel := o.notify
	if o.dryRun {
		channel = notifier.ChannelDryRun
	}
	return notifier.New(channel, notifier.Options{
		TelegramBotToken: cfg.TelegramBotToken,
		TelegramChatID:   cfg.TelegramChatID,
		Twitter: notifier.TwitterCredentials{
			APIKey:       cfg.TwitterAPIKey,
			APISecret:    cfg.TwitterAPISecret,
			AccessToken:  cfg.TwitterAccessToken,
			AccessSecret: cfg.TwitterAccessSecret,
		},
		DryRunOutput: stderr,
	})
}

func setupLogger(cfg *config.Config, verbose bool) {
	level := logger.ParseLevel(cfg.LogLevel)
	if verbose {
		level = logger.LevelDebug
	}
	if cfg.IsProduction() {
		logger.SetDefault(logger.New(level, os.Stderr))
	} else {
		logger.SetDefault(logger.NewDevelopment(level, os.Stderr))
	}
}

// immediate is a waiter that never blocks.
type immediate struct{}

func (immediate) Wait(context.Context) error { return nil }

// runBook is the main command logic
func runBook(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	cfg, err := config.Load(opts.envDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupLogger(cfg, opts.verbose)
	defer logger.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		return err
	}

	params, waiter, err := opts.params(cfg)
	if err != nil {
		return err
	}
	headless, err := opts.headlessMode(cfg)
	if err != nil {
		return err
	}

	notify, err := opts.notifier(cfg, stderr)
	if err != nil {
		return fmt.Errorf("initializing notifier: %w", err)
	}

	var store *storage.Storage
	if opts.reportDir != "" {
		if store, err = storage.New(opts.reportDir); err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
	}

	logger.Info("Starting SmartPLAY booking", logger.Fields{
		"env":      cfg.Env,
		"headless": headless,
		"release":  opts.releaseTime,
		"zone":     params.Location.String(),
	})

	browser, err := smartplay.Launch(ctx, smartplay.Options{
		Headless: headless,
		Facility: opts.facilityFilter(),
	})
	if err != nil {
		return err
	}
	defer browser.Close()

	runner := booking.NewRunner(browser, waiter, params)
	if opts.noWait {
		runner.Waiter = immediate{}
	}

	result := runner.Run(ctx)
	return report(ctx, result, params.Location, format, stdout, notify, store)
}

// report prints, pushes and stores the result. Delivery problems are logged
// but do not fail the run.
func report(ctx context.Context, result *booking.Result, loc *time.Location, format OutputFormat,
	stdout io.Writer, notify notifier.Notifier, store *storage.Storage) error {
	summary := result.Summary(loc, time.Now())

	out := &OutputResult{
		Result:  result,
		Summary: summary,
		Metrics: logger.GetMetricsSnapshot(),
	}
	if err := WriteOutput(stdout, out, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := notify.Notify(notifyCtx, summary); err != nil {
		logger.Error("Failed to send notification", nil, err)
	}

	if store != nil {
		path, err := store.SaveReport(result)
		if err != nil {
			logger.Error("Failed to write report", nil, err)
		} else {
			logger.Info("Report written", logger.Fields{"path": path})
		}

		if result.Status == booking.StatusSuccess {
			saveCalendar(result, loc, store)
		}
	}

	return nil
}

func saveCalendar(result *booking.Result, loc *time.Location, store *storage.Storage) {
	ics, err := calendar.GenerateICS(result, loc, time.Now())
	if err != nil {
		logger.Warn("Skipping calendar entry", logger.Fields{"error": err.Error()})
		return
	}
	path, err := store.SaveCalendar(result, ics)
	if err != nil {
		logger.Error("Failed to write calendar entry", nil, err)
		return
	}
	logger.Info("Calendar entry written", logger.Fields{"path": path})
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
