package gancio

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// adminEventPattern matches entries of the unconfirmedEvents array embedded
// in the admin page's scripts: {id:123,title:<var>,slug:"some-show-3",...}.
// Titles are JS variable references in that payload, so the slug is the only
// reliable text field.
var adminEventPattern = regexp.MustCompile(`\{id:(\d+),title:([^,]+),slug:"([^"]+)"`)

// slugSuffixPattern matches the incrementing "-N" suffix the server appends
// to slugs of re-submitted duplicates.
var slugSuffixPattern = regexp.MustCompile(`-\d+$`)

// ParseAdminEvents extracts events from a saved Gancio admin HTML page. Used
// for offline duplicate analysis when the events API is unreachable: the page
// embeds the full unconfirmed-events queue as a script payload.
//
// Returned events carry the slug as their title; the title normalizer strips
// the trailing numeric slug suffix, so re-listed duplicates of the same show
// still group together.
func ParseAdminEvents(r io.Reader) ([]RemoteEvent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing admin page: %w", err)
	}

	var events []RemoteEvent
	seen := make(map[int]bool)

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		for _, m := range adminEventPattern.FindAllStringSubmatch(sel.Text(), -1) {
			id := 0
			fmt.Sscanf(m[1], "%d", &id)
			if id == 0 || seen[id] {
				continue
			}
			seen[id] = true
			events = append(events, RemoteEvent{
				ID:    id,
				Title: m[3],
				Slug:  m[3],
			})
		}
	})

	if len(events) == 0 {
		return nil, fmt.Errorf("no events found in admin page")
	}
	return events, nil
}

// SlugBase strips the trailing numeric duplicate suffix from a slug, e.g.
// "punk-show-3" -> "punk-show". The base identifies the logical event.
func SlugBase(slug string) string {
	return strings.TrimSpace(slugSuffixPattern.ReplaceAllString(slug, ""))
}
