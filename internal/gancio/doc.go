// Package gancio is the HTTP client for the remote Gancio event calendar.
//
// All authenticated calls ride a session cookie obtained from the form login
// endpoint. The client exposes exactly the operations the sync engine needs:
// Login, ListEvents (retried before being declared fatal), CreateEvent, and
// DeleteEvent (404 counts as already deleted). ParseAdminEvents additionally
// extracts events from a saved admin HTML page for offline duplicate
// analysis when no API access is available.
package gancio
