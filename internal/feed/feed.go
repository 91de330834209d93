// Package feed loads scraped raw events from the JSON handoff files the
// external scrapers write. Scraping itself lives outside this repository;
// the contract is a JSON array of raw event records.
package feed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/orlandopunx/eventsync/internal/event"
)

// Load reads a scraper handoff file. Records missing a title, venue, or date
// are rejected up front: they could never form an identity tuple.
func Load(path string) ([]event.RawEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading events file: %w", err)
	}

	var events []event.RawEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing events file: %w", err)
	}

	for i, evt := range events {
		if evt.Title == "" || evt.Venue == "" || evt.Date == "" {
			return nil, fmt.Errorf("record %d is missing title, venue, or date", i)
		}
	}

	return events, nil
}
