// Package storage writes booking run reports as JSON files.
//
// Reports are an audit trail for the operator; a run never reads a previous
// report back.
package storage
