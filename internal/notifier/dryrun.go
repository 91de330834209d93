package notifier

import (
	"fmt"
	"io"
)

// DryRunNotifier prints what would be announced without posting anything.
type DryRunNotifier struct {
	Out io.Writer
}

// Notify prints the announcements.
func (n *DryRunNotifier) Notify(events []Event) error {
	for i, evt := range events {
		post := formatPost(evt)
		fmt.Fprintf(n.Out, "--- Announcement %d/%d ---\n%s\n\n", i+1, len(events), post)
	}
	return nil
}
