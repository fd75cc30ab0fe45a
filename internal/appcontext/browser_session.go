package appcontext

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"appcheck/internal/config"
)

// browserSession is the playwright side of an AppContext: one driver, one
// browser, one context, one page, torn down together.
type browserSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	tracing bool
}

func newBrowserSession(cfg *config.ResolvedConfig, opts Options) (*browserSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright driver: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!opts.Headful),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{}
	if cfg.Viewport != nil {
		contextOpts.Viewport = &playwright.Size{
			Width:  cfg.Viewport.Width,
			Height: cfg.Viewport.Height,
		}
	}

	browserCtx, err := browser.NewContext(contextOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}
	browserCtx.SetDefaultTimeout(float64(cfg.Timeout.Milliseconds()))
	browserCtx.SetDefaultNavigationTimeout(float64(cfg.Timeout.Milliseconds()))

	if opts.Trace {
		err = browserCtx.Tracing().Start(playwright.TracingStartOptions{
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
		})
		if err != nil {
			browser.Close()
			pw.Stop()
			return nil, fmt.Errorf("starting trace recording: %w", err)
		}
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return &browserSession{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    page,
		tracing: opts.Trace,
	}, nil
}

func (s *browserSession) goto_(url string, timeout time.Duration) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err
}

func (s *browserSession) click(selector string, timeout time.Duration) error {
	return s.page.Locator(selector).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (s *browserSession) fill(selector, value string, timeout time.Duration) error {
	return s.page.Locator(selector).Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (s *browserSession) visible(selector string) (bool, error) {
	return s.page.Locator(selector).IsVisible()
}

func (s *browserSession) text(selector string) (string, error) {
	return s.page.Locator(selector).TextContent()
}

func (s *browserSession) screenshot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	_, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// close tears the session down in reverse creation order. The first error is
// kept, later teardown still runs.
func (s *browserSession) close(tracePath string) error {
	var firstErr error

	if s.tracing {
		if tracePath != "" {
			if err := os.MkdirAll(filepath.Dir(tracePath), 0755); err == nil {
				firstErr = s.context.Tracing().Stop(tracePath)
			} else {
				firstErr = err
			}
		} else {
			firstErr = s.context.Tracing().Stop()
		}
	}
	if err := s.context.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
