package notifier

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

const tweetLimit = 280

// TwitterCredentials holds the OAuth1 user-context keys.
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

func (c TwitterCredentials) complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier posts the summary as a tweet
type TwitterNotifier struct {
	httpClient *http.Client
}

// NewTwitterNotifier creates a Twitter notifier from OAuth1 credentials.
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.complete() {
		return nil, fmt.Errorf("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{httpClient: httpClient}, nil
}

// Notify posts a condensed summary. The request is bound to ctx.
func (n *TwitterNotifier) Notify(ctx context.Context, summary string) error {
	client := twitter.NewClient(&http.Client{
		Transport: contextTransport{ctx: ctx, base: n.httpClient.Transport},
	})
	if _, _, err := client.Statuses.Update(formatTweet(summary), nil); err != nil {
		return fmt.Errorf("posting tweet: %w", err)
	}
	return nil
}

// formatTweet drops banner lines and truncates to the tweet limit, counting
// CJK and emoji as two characters the way Twitter does.
func formatTweet(summary string) string {
	var lines []string
	for _, line := range strings.Split(summary, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Trim(trimmed, "=") == "" {
			continue
		}
		lines = append(lines, line)
	}
	tweet := strings.Join(lines, "\n")

	if weightedLen(tweet) <= tweetLimit {
		return tweet
	}

	var b strings.Builder
	budget := tweetLimit - 3
	for _, r := range tweet {
		w := runeWeight(r)
		if w > budget {
			break
		}
		budget -= w
		b.WriteRune(r)
	}
	return b.String() + "..."
}

func runeWeight(r rune) int {
	if r <= 0x10FF {
		return 1
	}
	return 2
}

func weightedLen(s string) int {
	n := 0
	for _, r := range s {
		n += runeWeight(r)
	}
	return n
}

// contextTransport attaches ctx to every request, since the Twitter client
// builds its requests without one.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req.WithContext(t.ctx))
}
