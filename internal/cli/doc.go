// Package cli implements the command-line interface for smartplay-booking.
//
// The cli package provides the Cobra root command. It loads configuration,
// launches the browser, runs one booking attempt, prints the summary (text or
// JSON), pushes it to the chosen notifier and optionally writes a JSON report.
package cli
