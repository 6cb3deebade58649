package notifier

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Notifier delivers a plain-text run summary
type Notifier interface {
	Notify(ctx context.Context, summary string) error
}

// Channel names accepted by New.
const (
	ChannelTelegram = "telegram"
	ChannelTwitter  = "twitter"
	ChannelDryRun   = "dry-run"
	ChannelNone     = "none"
)

// Options carries the credentials each channel needs.
type Options struct {
	TelegramBotToken string
	TelegramChatID   string
	Twitter          TwitterCredentials

	// DryRunOutput receives dry-run notifications (stdout when nil).
	DryRunOutput io.Writer
}

// New builds the notifier for a channel name.
func New(channel string, opts Options) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case ChannelTelegram, "":
		return NewTelegramNotifier(opts.TelegramBotToken, opts.TelegramChatID)
	case ChannelTwitter:
		return NewTwitterNotifier(opts.Twitter)
	case ChannelDryRun:
		return NewDryRunNotifier(opts.DryRunOutput), nil
	case ChannelNone:
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown notifier %q (want telegram, twitter, dry-run or none)", channel)
	}
}

// Nop discards the summary.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(context.Context, string) error { return nil }
