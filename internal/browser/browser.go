package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/executor"
	"github.com/v0xg/streamchapters/internal/logging"
	"github.com/v0xg/streamchapters/internal/snapshot"
)

// Options configures how the browser is reached
type Options struct {
	ControlURL string        // attach to a running Chromium (ws:// or http://host:port)
	ProfileDir string        // Chrome/Chromium profile directory for authenticated sessions
	Headless   bool          // only applies to launched browsers
	Hosts      []string      // page hosts accepted by FindTarget when no match is given
	Timeout    time.Duration // page load timeout for Open
	Executor   *executor.Executor
	Snapshots  *snapshot.Writer // optional, screenshots of failed jobs
	Logger     *logging.Logger
}

// Browser wraps a Rod browser connection
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	hosts    []string
	timeout  time.Duration
	exec     *executor.Executor
	snaps    *snapshot.Writer
	logger   *logging.Logger
}

// Connect attaches to the browser at ControlURL, or launches a local one
func Connect(ctx context.Context, opts Options) (*Browser, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Executor == nil {
		opts.Executor = executor.New(executor.Options{Logger: opts.Logger})
	}
	b := &Browser{
		hosts:   opts.Hosts,
		timeout: opts.Timeout,
		exec:    opts.Executor,
		snaps:   opts.Snapshots,
		logger:  opts.Logger.WithComponent("browser"),
	}

	var u string
	if opts.ControlURL != "" {
		resolved, err := launcher.ResolveURL(opts.ControlURL)
		if err != nil {
			return nil, fmt.Errorf("resolve control url: %w", err)
		}
		u = resolved
		b.logger.Browser("Attaching to running browser", "url", u)
	} else {
		path, _ := launcher.LookPath()
		l := launcher.New().Bin(path).Headless(opts.Headless)
		if opts.ProfileDir != "" {
			l = l.UserDataDir(opts.ProfileDir)
		}
		launched, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		u = launched
		b.launcher = l
		b.logger.Browser("Launched browser", "bin", path, "profile", opts.ProfileDir, "headless", opts.Headless)
	}

	rb := rod.New().ControlURL(u).Context(ctx)
	if err := rb.Connect(); err != nil {
		b.kill()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	// keep the connection usable after the dial context is gone
	b.browser = rb.Context(context.Background())
	return b, nil
}

// Close cleans up browser resources. A browser we attached to is left
// running.
func (b *Browser) Close() {
	if b.launcher == nil {
		return
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
	b.kill()
}

func (b *Browser) kill() {
	if b.launcher != nil {
		b.launcher.Kill()
	}
}

// PageInfo describes an open tab
type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Pages lists the open tabs
func (b *Browser) Pages() ([]PageInfo, error) {
	_, infos, err := b.openPages()
	return infos, err
}

func (b *Browser) openPages() ([]*rod.Page, []PageInfo, error) {
	pages, err := b.browser.Pages()
	if err != nil {
		return nil, nil, chapter.Wrap(chapter.KindBoundaryUnavailable, err, "list pages")
	}
	live := make([]*rod.Page, 0, len(pages))
	infos := make([]PageInfo, 0, len(pages))
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		live = append(live, p)
		infos = append(infos, PageInfo{URL: info.URL, Title: info.Title})
	}
	return live, infos, nil
}

// FindTarget returns the first open tab whose URL contains match or, when
// match is empty, whose URL is on one of the configured hosts.
func (b *Browser) FindTarget(match string) (*Target, error) {
	pages, infos, err := b.openPages()
	if err != nil {
		return nil, err
	}
	for i, info := range infos {
		if matchesTarget(info.URL, match, b.hosts) {
			b.logger.Browser("Found target page", "url", info.URL, "title", info.Title)
			return b.target(pages[i], info.URL), nil
		}
	}
	return nil, noTarget(match, b.hosts, infos)
}

// noTarget explains a failed FindTarget, listing what is open instead
func noTarget(match string, hosts []string, open []PageInfo) error {
	var msg string
	if match != "" {
		msg = fmt.Sprintf("no open page matches %q", match)
	} else {
		msg = fmt.Sprintf("open a Stream video page first (%s)", strings.Join(hosts, ", "))
	}
	if len(open) == 0 {
		return chapter.Errorf(chapter.KindNoTarget, "%s; no pages are open", msg)
	}
	urls := make([]string, 0, len(open))
	for _, p := range open {
		urls = append(urls, p.URL)
	}
	return chapter.Errorf(chapter.KindNoTarget, "%s; open pages: %s", msg, strings.Join(urls, ", "))
}

// Open navigates a new tab to pageURL and waits for it to load
func (b *Browser) Open(ctx context.Context, pageURL string) (*Target, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, chapter.Wrap(chapter.KindBoundaryUnavailable, err, "open page")
	}
	if err := page.Context(ctx).Timeout(b.timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", pageURL, err)
	}
	b.logger.Browser("Opened target page", "url", pageURL)
	return b.target(page, pageURL), nil
}

// matchesTarget implements the page check: an explicit match is a substring
// test, otherwise the URL host must be one of hosts or a subdomain of one.
func matchesTarget(pageURL, match string, hosts []string) bool {
	if match != "" {
		return strings.Contains(pageURL, match)
	}
	host := hostOf(pageURL)
	if host == "" {
		return false
	}
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
