// Package venue resolves raw venue strings from scrapers to canonical venue
// records carrying the remote calendar's place identifier.
//
// Lookup is a pure function over a static table loaded at process start:
// exact canonical-name match first, then alias match, then substring
// containment. A string that matches nothing fails with UnresolvedVenueError;
// the caller must treat that as a hard validation error for the record rather
// than fall back to a default venue.
package venue
