package smartplay

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func TestButtonXPath(t *testing.T) {
	tests := []struct {
		name  string
		exact bool
		want  string
	}{
		{"继续", false, `//*[self::button or @role="button"][contains(normalize-space(.), "继续")]`},
		{"否", true, `//*[self::button or @role="button"][normalize-space(.)="否"]`},
		{"确认并同意", false, `//*[self::button or @role="button"][contains(normalize-space(.), "确认并同意")]`},
		{"继续", true, `//*[self::button or @role="button"][normalize-space(.)="继续"]`},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/exact=%v", tt.name, tt.exact), func(t *testing.T) {
			if got := buttonXPath(tt.name, tt.exact); got != tt.want {
				t.Errorf("buttonXPath() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInputXPath(t *testing.T) {
	want := `//input[@aria-label="密码" or @placeholder="密码"]`
	if got := inputXPath("密码"); got != want {
		t.Errorf("inputXPath() = %s, want %s", got, want)
	}
}

func TestXPathLiteral(t *testing.T) {
	if got := xpathLiteral(`say "hi"`); got != `'say "hi"'` {
		t.Errorf("xpathLiteral() = %s", got)
	}
	if got := xpathLiteral("登入"); got != `"登入"` {
		t.Errorf("xpathLiteral() = %s", got)
	}
}

func TestQueueNumber_Captured(t *testing.T) {
	b := &Browser{}
	if _, ok := b.QueueNumber(); ok {
		t.Fatal("new browser should have no queue number")
	}

	b.queueNum = "1024"
	if got, ok := b.QueueNumber(); !ok || got != "1024" {
		t.Errorf("QueueNumber() = (%q, %v), want (1024, true)", got, ok)
	}
}

func TestTextXPath(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"虚拟等候室", `//*[contains(text(), "虚拟等候室")]`},
		{"登入 SmartPLAY", `//*[contains(text(), "登入 SmartPLAY")]`},
		{`a "quoted" label`, `//*[contains(text(), 'a "quoted" label')]`},
	}

	for _, tt := range tests {
		if got := textXPath(tt.text); got != tt.want {
			t.Errorf("textXPath(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestBlockedURLs(t *testing.T) {
	want := map[string]bool{"*.jpg": true, "*.ttf": true, "*.gif": true, "*.png": true}
	if len(blockedURLs) != len(want) {
		t.Fatalf("blockedURLs = %v", blockedURLs)
	}
	for _, u := range blockedURLs {
		if !want[u] {
			t.Errorf("unexpected blocked pattern %q", u)
		}
	}
}

// waitForQueueNumber polls until the capture goroutine stores a number.
func waitForQueueNumber(t *testing.T, b *Browser) (string, bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n, ok := b.QueueNumber(); ok {
			return n, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return "", false
}

func TestOnEvent_CapturesQueueNumber(t *testing.T) {
	var reads atomic.Int32
	b := &Browser{
		readBody: func(id network.RequestID) ([]byte, error) {
			reads.Add(1)
			if id != "req-7" {
				t.Errorf("readBody(%s), want req-7", id)
			}
			return []byte(`{"code":"0","data":{"queueNum":1024}}`), nil
		},
	}

	// A status lookup is not the queue-issuing call.
	b.onEvent(&network.EventResponseReceived{
		RequestID: "req-6",
		Response:  &network.Response{URL: QueueStatusURL("99")},
	})
	if b.queueReq != "" {
		t.Fatalf("queueReq = %q after status response, want empty", b.queueReq)
	}

	b.onEvent(&network.EventResponseReceived{
		RequestID: "req-7",
		Response:  &network.Response{URL: QueueURL()},
	})
	if b.queueReq != "req-7" {
		t.Fatalf("queueReq = %q, want req-7", b.queueReq)
	}

	// Unrelated requests finishing do not trigger a read.
	b.onEvent(&network.EventLoadingFinished{RequestID: "req-8"})
	b.onEvent(&network.EventLoadingFinished{RequestID: "req-7"})

	got, ok := waitForQueueNumber(t, b)
	if !ok || got != "1024" {
		t.Fatalf("QueueNumber() = (%q, %v), want (1024, true)", got, ok)
	}
	if n := reads.Load(); n != 1 {
		t.Errorf("readBody called %d times, want 1", n)
	}
}

func TestOnEvent_NoQueueResponseYet(t *testing.T) {
	b := &Browser{
		readBody: func(network.RequestID) ([]byte, error) {
			t.Error("readBody called without a queue response")
			return nil, nil
		},
	}

	b.onEvent(&network.EventLoadingFinished{RequestID: ""})
	b.onEvent(&network.EventLoadingFinished{RequestID: "req-1"})

	if _, ok := b.QueueNumber(); ok {
		t.Error("QueueNumber() reported a number without a queue response")
	}
}

func TestReadQueueBody_Errors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
		err  error
	}{
		{"fetch failed", nil, errors.New("no resource with given identifier")},
		{"no number in body", []byte(`{"data":{"queueNum":null}}`), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Browser{
				readBody: func(network.RequestID) ([]byte, error) { return tt.body, tt.err },
			}
			b.readQueueBody("req-1")

			if _, ok := b.QueueNumber(); ok {
				t.Error("QueueNumber() set despite unusable response")
			}
		})
	}
}
