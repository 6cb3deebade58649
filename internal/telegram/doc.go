// Package telegram provides a minimal Telegram Bot API client for pushing the
// booking summary to a chat.
//
// Messages are sent as plain text with a plain HTTP request. Transient
// failures (network errors, 5xx, 429) are retried a few times with a
// constant delay; other API errors are returned immediately.
//
// Authentication requires a bot token (from @BotFather) and chat ID.
package telegram
