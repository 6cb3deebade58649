package notifier

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFormatTweet(t *testing.T) {
	tests := []struct {
		name        string
		summary     string
		contains    []string
		notContains []string
		truncated   bool
	}{
		{
			name:        "banners dropped",
			summary:     "====================\n🎯 SmartPLAY 预订结果摘要\n====================\n\n📊 状态: ✅ 预订成功",
			contains:    []string{"🎯 SmartPLAY 预订结果摘要", "📊 状态: ✅ 预订成功"},
			notContains: []string{"=====", "\n\n"},
		},
		{
			name:      "long summary truncated",
			summary:   strings.Repeat("已选时间段 17:00 - 18:00\n", 40),
			contains:  []string{"已选时间段", "..."},
			truncated: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTweet(tt.summary)

			if weightedLen(got) > tweetLimit {
				t.Errorf("formatTweet() weighted length = %d, want <= %d", weightedLen(got), tweetLimit)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("formatTweet() missing %q in tweet:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.notContains {
				if strings.Contains(got, unwanted) {
					t.Errorf("formatTweet() should not contain %q:\n%s", unwanted, got)
				}
			}
			if tt.truncated != strings.HasSuffix(got, "...") {
				t.Errorf("formatTweet() truncated = %v, want %v", !tt.truncated, tt.truncated)
			}
		})
	}
}

func TestWeightedLen(t *testing.T) {
	if got := weightedLen("abc"); got != 3 {
		t.Errorf("weightedLen(abc) = %d, want 3", got)
	}
	if got := weightedLen("预订"); got != 4 {
		t.Errorf("weightedLen(预订) = %d, want 4", got)
	}
}

func TestNewTwitterNotifier_MissingCredentials(t *testing.T) {
	_, err := NewTwitterNotifier(TwitterCredentials{APIKey: "key"})
	if err == nil {
		t.Error("NewTwitterNotifier() expected error for incomplete credentials")
	}
}

func TestTwitterNotifier_HonoursContext(t *testing.T) {
	n, err := NewTwitterNotifier(TwitterCredentials{
		APIKey: "key", APISecret: "secret", AccessToken: "token", AccessSecret: "access",
	})
	if err != nil {
		t.Fatalf("NewTwitterNotifier() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = n.Notify(ctx, "预订成功")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Notify() error = %v, want %v", err, context.Canceled)
	}
}

func TestContextTransport_Deadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := &http.Client{Transport: contextTransport{ctx: ctx}}
	resp, err := client.Get(server.URL)
	if err == nil {
		resp.Body.Close()
		t.Fatal("Get() expected deadline error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Get() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewDryRunNotifier(&buf)

	if err := n.Notify(context.Background(), "预订成功"); err != nil {
		t.Fatalf("DryRunNotifier.Notify() error = %v, want nil", err)
	}

	out := buf.String()
	if !strings.Contains(out, "预订成功") {
		t.Errorf("output missing summary: %q", out)
	}
	if !strings.Contains(out, "(Length: 4 characters)") {
		t.Errorf("output missing rune length: %q", out)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		opts    Options
		wantErr bool
		wantT   string
	}{
		{"telegram", "telegram", Options{TelegramBotToken: "t", TelegramChatID: "1"}, false, "*notifier.TelegramNotifier"},
		{"default is telegram", "", Options{TelegramBotToken: "t", TelegramChatID: "1"}, false, "*notifier.TelegramNotifier"},
		{"telegram without token", "telegram", Options{}, true, ""},
		{"dry run", "dry-run", Options{}, false, "*notifier.DryRunNotifier"},
		{"dry run with writer", "dry-run", Options{DryRunOutput: &bytes.Buffer{}}, false, "*notifier.DryRunNotifier"},
		{"none", "NONE", Options{}, false, "notifier.Nop"},
		{"unknown", "pager", Options{}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.channel, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := typeName(n); got != tt.wantT {
				t.Errorf("New() type = %s, want %s", got, tt.wantT)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *TelegramNotifier:
		return "*notifier.TelegramNotifier"
	case *DryRunNotifier:
		return "*notifier.DryRunNotifier"
	case Nop:
		return "notifier.Nop"
	case *TwitterNotifier:
		return "*notifier.TwitterNotifier"
	default:
		return "unknown"
	}
}
