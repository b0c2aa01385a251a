package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/use-agent/pagegrab/cleaner"
	"github.com/use-agent/pagegrab/models"
)

// harvestJS returns the nine regions from the live DOM. Single-element
// regions use the first match only; paragraphs and list items join all
// matches.
var harvestJS = fmt.Sprintf(`() => {
	const first = (sel) => document.querySelector(sel)?.textContent || '';
	const all = (sel) => Array.from(document.querySelectorAll(sel)).map(el => el.textContent).join(' ');
	return {
		title: document.title || '',
		metaDescription: document.querySelector(%q)?.getAttribute('content') || '',
		h1: first(%q),
		h2: first(%q),
		article: first(%q),
		main: first(%q),
		content: first(%q),
		paragraphs: all(%q),
		listItems: all(%q),
	};
}`,
	cleaner.SelectorMetaDescription,
	cleaner.SelectorH1,
	cleaner.SelectorH2,
	cleaner.SelectorArticle,
	cleaner.SelectorMain,
	cleaner.SelectorContentRegion,
	cleaner.SelectorParagraph,
	cleaner.SelectorListItem,
)

// RodOptions configures a RodEngine.
type RodOptions struct {
	// ChromePath selects a local executable launched with default arguments.
	// Empty means the managed Chromium build with serverless flags.
	ChromePath string

	// Timeout bounds launch, navigation and evaluation together.
	Timeout time.Duration

	// Stealth masks common headless fingerprints before navigation.
	Stealth bool

	// BlockedResourceTypes lists CDP resource types ("Image", "Font", ...)
	// that are failed instead of fetched.
	BlockedResourceTypes []string

	// BlockTrackers fails requests to known ad and analytics hosts.
	BlockTrackers bool

	// Resolve locates the managed browser. Defaults to rod's downloader.
	Resolve BinResolver
}

// RodEngine is the second extraction tier. Every Extract call launches its
// own browser and tears it down before returning.
type RodEngine struct {
	opts    RodOptions
	blocked map[proto.NetworkResourceType]struct{}
}

// NewRodEngine creates a RodEngine.
func NewRodEngine(opts RodOptions) *RodEngine {
	if opts.Resolve == nil {
		opts.Resolve = managedBrowser
	}
	return &RodEngine{
		opts:    opts,
		blocked: blockedSet(opts.BlockedResourceTypes),
	}
}

func (e *RodEngine) Name() string { return "rod" }

// Extract renders url in a fresh headless browser, waits for
// DOMContentLoaded and harvests the regions from the live DOM.
func (e *RodEngine) Extract(ctx context.Context, url string) (*models.ScrapedContent, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	l, err := newLauncher(ctx, e.opts.ChromePath, e.opts.Resolve)
	if err != nil {
		return nil, err
	}
	session, err := openSession(ctx, l)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	page, err := e.newPage(session.browser)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeDynamicRender, "open page")
	}
	p := page.Context(ctx)

	if router := setupHijack(p, e.blocked, e.opts.BlockTrackers); router != nil {
		defer func() { _ = router.Stop() }()
	}

	// The waiter must exist before Navigate or the event can be missed.
	waitDOM := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return nil, categorizeError(err, models.ErrCodeDynamicRender, "navigation to target URL failed")
	}
	waitDOM()

	res, err := p.Eval(harvestJS)
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeDynamicRender, "evaluate page regions")
	}
	regions, err := regionsFromJSON(res.Value)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeDynamicRender, "decode page regions", err)
	}

	content := regions.Build(url)
	return &content, nil
}

func (e *RodEngine) newPage(b *rod.Browser) (*rod.Page, error) {
	if e.opts.Stealth {
		return stealth.Page(b)
	}
	return b.Page(proto.TargetCreateTarget{})
}

// regionsFromJSON decodes the object returned by harvestJS. v may hold the
// raw CDP bytes or an already parsed value; both re-encode the same way.
func regionsFromJSON(v gson.JSON) (cleaner.Regions, error) {
	var r cleaner.Regions
	raw := v.JSON("", "")
	if raw == "" || raw == "null" {
		return r, fmt.Errorf("empty evaluation result")
	}
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return r, err
	}
	return r, nil
}
