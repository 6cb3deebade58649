// Package booking runs one booking attempt end to end.
//
// A Runner waits for the release time, logs in, waits for a queue number and
// the virtual waiting room, opens the facility page, picks two consecutive
// slots and walks the confirmation form. It talks to the website only
// through the Site interface. Every outcome, including failures after
// start-up, is recorded in a Result rather than returned as an error.
package booking
