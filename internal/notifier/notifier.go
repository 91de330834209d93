// Package notifier announces newly submitted events after a successful sync
// run. Notification failures never affect the run result.
package notifier

// Event is the announcement payload for one submitted event.
type Event struct {
	Title string
	Venue string
	Date  string
	URL   string
}

// Notifier posts announcements for submitted events.
type Notifier interface {
	Notify(events []Event) error
}
