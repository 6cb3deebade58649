package notifier

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/smartplay-booking/internal/telegram"
)

// TelegramNotifier pushes the summary to a Telegram chat
type TelegramNotifier struct {
	client *telegram.Client
}

// NewTelegramNotifier creates a Telegram notifier for a bot token and chat ID.
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	client, err := telegram.NewClient(botToken, chatID)
	if err != nil {
		return nil, fmt.Errorf("initializing Telegram client: %w", err)
	}
	return &TelegramNotifier{client: client}, nil
}

// Notify sends the summary as a single message.
func (n *TelegramNotifier) Notify(ctx context.Context, summary string) error {
	if err := n.client.SendMessage(ctx, summary); err != nil {
		return fmt.Errorf("sending Telegram message: %w", err)
	}
	return nil
}
