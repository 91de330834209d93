package notifier

import (
	"fmt"
	"os"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

// TwitterNotifier posts submitted events to Twitter.
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a Twitter notifier from environment variables:
// TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN,
// TWITTER_ACCESS_SECRET.
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Notify posts one tweet per event, spaced out to stay under rate limits.
func (n *TwitterNotifier) Notify(events []Event) error {
	for i, evt := range events {
		if _, _, err := n.client.Statuses.Update(formatPost(evt), nil); err != nil {
			return fmt.Errorf("posting announcement for %q: %w", evt.Title, err)
		}
		if i < len(events)-1 {
			time.Sleep(2 * time.Second)
		}
	}
	return nil
}

// formatPost renders an announcement, truncated to the 280 character limit.
func formatPost(evt Event) string {
	post := "New show added!\n\n"
	post += evt.Title + "\n"
	if evt.Venue != "" {
		post += evt.Venue + "\n"
	}
	if evt.Date != "" {
		post += evt.Date + "\n"
	}
	if evt.URL != "" {
		post += "\n" + evt.URL
	}

	if len(post) > 280 {
		post = post[:277] + "..."
	}
	return post
}
