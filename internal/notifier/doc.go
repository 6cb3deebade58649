// Package notifier delivers the end-of-run booking summary.
//
// Telegram is the default channel. Twitter and a dry-run printer are
// available for accounts that prefer a public post or for local runs.
package notifier
