package smartplay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/smartplay-booking/internal/booking"
	"github.com/pfrederiksen/smartplay-booking/internal/logger"
	"github.com/pfrederiksen/smartplay-booking/internal/scraper"
)

const (
	loginTimeout  = 30 * time.Second
	slotsTimeout  = 60 * time.Second
	actionTimeout = 30 * time.Second

	waitingRoomText = "虚拟等候室"
	loginHeading    = "登入 SmartPLAY"
	usernameLabel   = "SmartPLAY用户帐号或别名"
	passwordLabel   = "密码"
	loginButton     = "登入"
	facilitiesMenu  = ".left-menu-continer li:nth-child(2)"
)

// blockedURLs keeps images and fonts from loading.
var blockedURLs = []string{"*.jpg", "*.ttf", "*.gif", "*.png"}

// initScript runs before every document so the site renders in simplified
// Chinese with its devtools check satisfied.
const initScript = `(() => {
  const dt = new Date().getFullYear() + new Date().getHours();
  localStorage.setItem('devtools', String(dt));
  localStorage.setItem('webapplanguage', 'zh-cn');
})();`

// Options configures the browser.
type Options struct {
	Headless bool
	Facility Facility
}

// Browser is a single Chrome tab logged in to SmartPLAY.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options

	// readBody fetches a finished response body; tests replace it.
	readBody func(id network.RequestID) ([]byte, error)

	mu       sync.Mutex
	queueReq network.RequestID
	queueNum string
}

var _ booking.Site = (*Browser)(nil)

// Launch starts Chrome and prepares a tab. Close must be called to release it.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("incognito", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	b := &Browser{
		ctx: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
		opts: opts,
	}
	b.readBody = b.responseBody

	chromedp.ListenTarget(tabCtx, b.onEvent)

	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetBlockedURLS(blockedURLs),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(initScript).Do(ctx)
			return err
		}),
	)
	if err != nil {
		b.cancel()
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	return b, nil
}

// Close shuts the tab and the browser process.
func (b *Browser) Close() {
	b.cancel()
}

// run executes actions in the tab, stopping early when ctx is done or the
// timeout passes (zero means no timeout).
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(b.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(b.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (b *Browser) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventResponseReceived:
		if e.Response != nil && IsQueueURL(e.Response.URL) {
			b.mu.Lock()
			b.queueReq = e.RequestID
			b.mu.Unlock()
		}
	case *network.EventLoadingFinished:
		b.mu.Lock()
		match := b.queueReq != "" && e.RequestID == b.queueReq
		b.mu.Unlock()
		if match {
			// Listeners must not block; the body is fetched on its own goroutine.
			go b.readQueueBody(e.RequestID)
		}
	}
}

func (b *Browser) responseBody(id network.RequestID) ([]byte, error) {
	var body []byte
	err := chromedp.Run(b.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(id).Do(ctx)
		return err
	}))
	return body, err
}

func (b *Browser) readQueueBody(id network.RequestID) {
	body, err := b.readBody(id)
	if err != nil {
		logger.Warn("Could not read queue response", logger.Fields{"error": err.Error()})
		return
	}

	num, ok := ParseQueueNumber(body)
	logger.Info("Queue response intercepted", logger.Fields{"queue_num": num})
	if !ok {
		return
	}

	b.mu.Lock()
	b.queueNum = num
	b.mu.Unlock()
}

// OpenHome loads the home page.
func (b *Browser) OpenHome(ctx context.Context) error {
	logger.Info("Processing page", logger.Fields{"url": HomeURL})
	return b.run(ctx, actionTimeout, chromedp.Navigate(HomeURL))
}

// Login fills in the login form and submits it.
func (b *Browser) Login(ctx context.Context, username, password string) error {
	logger.Info("Waiting for login form", nil)
	if err := b.run(ctx, loginTimeout,
		chromedp.WaitVisible(textXPath(loginHeading), chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("login form not shown: %w", err)
	}

	user := inputXPath(usernameLabel)
	pass := inputXPath(passwordLabel)
	if err := b.run(ctx, actionTimeout,
		chromedp.Clear(user, chromedp.BySearch),
		chromedp.Clear(pass, chromedp.BySearch),
		chromedp.SendKeys(user, username, chromedp.BySearch),
		chromedp.SendKeys(pass, password, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("filling credentials: %w", err)
	}

	return b.ClickButton(ctx, booking.Button{Name: loginButton})
}

// QueueNumber returns the most recent queue number seen on the wire.
func (b *Browser) QueueNumber() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queueNum, b.queueNum != ""
}

// QueueStatus fetches the status of a queue number from inside the page, so
// the request carries the session's cookies.
func (b *Browser) QueueStatus(ctx context.Context, queueNum string) (bool, error) {
	js := fmt.Sprintf(`fetch(%q, {credentials: "include", headers: {"Accept": "application/json", "channel": "INTERNET"}}).then(r => r.text())`,
		QueueStatusURL(queueNum))

	var body string
	if err := b.run(ctx, actionTimeout, chromedp.Evaluate(js, &body, awaitPromise)); err != nil {
		return false, fmt.Errorf("fetching queue status: %w", err)
	}
	logger.Info("Queue response", logger.Fields{"body": body})

	return ParseQueueStatus([]byte(body))
}

// WaitingRoomVisible reports whether the virtual waiting room is on screen.
func (b *Browser) WaitingRoomVisible(ctx context.Context) (bool, error) {
	js := fmt.Sprintf(`!!document.body && document.body.innerText.includes(%q)`, waitingRoomText)

	var visible bool
	if err := b.run(ctx, actionTimeout, chromedp.Evaluate(js, &visible)); err != nil {
		return false, err
	}
	return visible, nil
}

// OpenFacilitiesMenu clicks the facilities entry of the left menu.
func (b *Browser) OpenFacilitiesMenu(ctx context.Context) error {
	return b.run(ctx, actionTimeout, chromedp.Click(facilitiesMenu, chromedp.ByQuery))
}

// OpenFacility navigates to the court selection page and waits for slots.
func (b *Browser) OpenFacility(ctx context.Context, playDate string) error {
	url := b.opts.Facility.URL(playDate)
	logger.Info("Processing page", logger.Fields{"url": url})

	if err := b.run(ctx, actionTimeout, chromedp.Navigate(url)); err != nil {
		return err
	}
	if err := b.run(ctx, slotsTimeout,
		chromedp.WaitVisible(scraper.ItemSelector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("slot list not shown: %w", err)
	}
	logger.Info("Facility items loaded", nil)
	return nil
}

// ClearSelections clicks every tag the page pre-selected.
func (b *Browser) ClearSelections(ctx context.Context) (int, error) {
	var nodes []*cdp.Node
	if err := b.run(ctx, actionTimeout,
		chromedp.Nodes(scraper.PreselectedSelector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)),
	); err != nil {
		return 0, err
	}

	for _, n := range nodes {
		if err := b.run(ctx, actionTimeout,
			chromedp.MouseClickNode(n),
			chromedp.Sleep(100*time.Millisecond),
		); err != nil {
			return 0, err
		}
	}
	return len(nodes), nil
}

// Slots snapshots the page and parses the slot list.
func (b *Browser) Slots(ctx context.Context) (*scraper.Page, error) {
	var html string
	if err := b.run(ctx, actionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	return scraper.ParseString(html)
}

// ClickSlot clicks the slot at index in page order.
func (b *Browser) ClickSlot(ctx context.Context, index int) error {
	var nodes []*cdp.Node
	if err := b.run(ctx, actionTimeout,
		chromedp.Nodes(scraper.ItemSelector, &nodes, chromedp.ByQueryAll),
	); err != nil {
		return err
	}
	if index < 0 || index >= len(nodes) {
		return fmt.Errorf("slot %d out of range (%d slots)", index, len(nodes))
	}
	return b.run(ctx, actionTimeout, chromedp.MouseClickNode(nodes[index]))
}

// ClickButton clicks the Nth button whose text matches the name.
func (b *Browser) ClickButton(ctx context.Context, btn booking.Button) error {
	var nodes []*cdp.Node
	if err := b.run(ctx, actionTimeout,
		chromedp.Nodes(buttonXPath(btn.Name, btn.Exact), &nodes, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("finding button %q: %w", btn.Name, err)
	}
	if btn.Nth >= len(nodes) {
		return fmt.Errorf("button %q #%d not found (%d matches)", btn.Name, btn.Nth, len(nodes))
	}
	return b.run(ctx, actionTimeout, chromedp.MouseClickNode(nodes[btn.Nth]))
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// xpathLiteral quotes s for use in an XPath expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	return "'" + s + "'"
}

func textXPath(text string) string {
	return fmt.Sprintf(`//*[contains(text(), %s)]`, xpathLiteral(text))
}

func inputXPath(label string) string {
	l := xpathLiteral(label)
	return fmt.Sprintf(`//input[@aria-label=%s or @placeholder=%s]`, l, l)
}

func buttonXPath(name string, exact bool) string {
	l := xpathLiteral(name)
	if exact {
		return fmt.Sprintf(`//*[self::button or @role="button"][normalize-space(.)=%s]`, l)
	}
	return fmt.Sprintf(`//*[self::button or @role="button"][contains(normalize-space(.), %s)]`, l)
}
