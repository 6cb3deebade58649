package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// DryRunNotifier prints what would be sent without contacting any service
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out (stdout when nil).
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be sent
func (n *DryRunNotifier) Notify(_ context.Context, summary string) error {
	fmt.Fprintln(n.out, "--- Notification (dry run) ---")
	fmt.Fprintln(n.out, summary)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n", utf8.RuneCountInString(summary))
	return nil
}
