package gancio

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dghubble/sling"
)

const (
	// UserAgent identifies the sync tool to the remote server.
	UserAgent = "eventsync/1.0 (github.com/orlandopunx/eventsync)"

	// Timeout bounds any single remote call.
	Timeout = 30 * time.Second

	// listRetries is how many times the event listing is retried before the
	// failure is declared fatal to the run.
	listRetries = 2

	// maxErrorBody caps how much of a failure response is carried into an
	// APIError.
	maxErrorBody = 200
)

// Client talks to one Gancio instance over an authenticated session.
type Client struct {
	base *sling.Sling
	http *http.Client
}

// NewClient builds a client for the given base URL. The underlying HTTP
// client carries a cookie jar so the login session applies to every
// subsequent call.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	httpClient := &http.Client{
		Timeout: Timeout,
		Jar:     jar,
	}

	return &Client{
		base: sling.New().Client(httpClient).Base(baseURL).Set("User-Agent", UserAgent),
		http: httpClient,
	}, nil
}

// loginForm is the form body for the login endpoint.
type loginForm struct {
	Email    string `url:"email"`
	Password string `url:"password"`
}

// Login authenticates the session. Any terminal status other than 200 is an
// AuthError, which aborts the run.
func (c *Client) Login(email, password string) error {
	req, err := c.base.New().Post("auth/login").BodyForm(&loginForm{
		Email:    email,
		Password: password,
	}).Request()
	if err != nil {
		return fmt.Errorf("building login request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &AuthError{StatusCode: resp.StatusCode}
	}
	return nil
}

// ListEvents fetches the full remote event listing. Transient failures are
// retried with exponential backoff; if all attempts fail the caller must
// treat the error as fatal rather than operate on an empty view.
func (c *Client) ListEvents() ([]RemoteEvent, error) {
	var events []RemoteEvent

	fetch := func() error {
		req, err := c.base.New().Get("api/events").Request()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("building listing request: %w", err))
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetching event listing: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return apiError("list events", resp)
		}

		events = events[:0]
		if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
			return fmt.Errorf("parsing event listing: %w", err)
		}
		return nil
	}

	err := backoff.Retry(fetch, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), listRetries))
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent submits a new event and returns the created record as the
// server reports it.
func (c *Client) CreateEvent(ev *NewEvent) (*RemoteEvent, error) {
	req, err := c.base.New().Post("api/event").BodyJSON(ev).Request()
	if err != nil {
		return nil, fmt.Errorf("building create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apiError("create event", resp)
	}

	var created RemoteEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		// Some deployments return an empty body on create; the submission
		// still succeeded.
		return &RemoteEvent{Title: ev.Title, StartDatetime: ev.StartDatetime}, nil
	}
	return &created, nil
}

// DeleteEvent removes one remote event. A 404 means the event is already
// gone and counts as success.
func (c *Client) DeleteEvent(id int) error {
	req, err := c.base.New().Delete(fmt.Sprintf("api/event/%d", id)).Request()
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return &APIError{Op: fmt.Sprintf("delete event %d", id), StatusCode: resp.StatusCode}
	}
}

// apiError builds an APIError carrying a snippet of the response body.
func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
