package appcontext

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"appcheck/internal/config"
	"appcheck/pkg/logging"
)

// Options configures session creation for one scenario run.
type Options struct {
	// Headful shows the browser window instead of running headless.
	Headful bool
	// Trace records a playwright trace for browser sessions.
	Trace bool
	// ArtifactDir is the run's results directory for screenshots and traces.
	ArtifactDir string
}

// AppContext is the per-scenario handle on one application. Browser apps
// carry a live page, API apps an HTTP client; both are scoped to the resolved
// environment's base URL.
type AppContext struct {
	// ID distinguishes this context in logs and artifact names.
	ID string
	// Config is the environment-resolved application configuration.
	Config *config.ResolvedConfig

	opts    Options
	browser *browserSession
	http    *httpSession

	mu     sync.Mutex
	closed bool
}

// New creates a context for the resolved application. Browser apps launch a
// playwright session, which requires the playwright driver and browsers to be
// installed.
func New(cfg *config.ResolvedConfig, opts Options) (*AppContext, error) {
	ac := &AppContext{
		ID:     uuid.NewString()[:8],
		Config: cfg,
		opts:   opts,
		http:   newHTTPSession(cfg),
	}

	if cfg.Kind == config.AppKindBrowser {
		session, err := newBrowserSession(cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("opening browser session for app %s (env %s): %w",
				cfg.Name, cfg.Environment, err)
		}
		ac.browser = session
	}

	logging.Debug("AppContext", "opened context %s for app %s (env %s, base URL %s)",
		ac.ID, cfg.Name, cfg.Environment, cfg.BaseURL)
	return ac, nil
}

// Navigate drives the browser to path joined onto the base URL. Absolute
// URLs pass through unchanged. The navigation is bounded by the app's
// default timeout, or by the context deadline when that is tighter.
func (a *AppContext) Navigate(ctx context.Context, path string) error {
	if err := a.checkOpen("navigate"); err != nil {
		return err
	}
	if a.browser == nil {
		return fmt.Errorf("app %s is not a browser app, navigate is unavailable", a.Config.Name)
	}

	url := a.Config.URL(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		url = path
	}

	if err := a.browser.goto_(url, a.timeout(ctx)); err != nil {
		return &NavigationError{
			App:         a.Config.Name,
			Environment: a.Config.Environment,
			URL:         url,
			Err:         err,
		}
	}
	return nil
}

// Click clicks the first element matching selector.
func (a *AppContext) Click(ctx context.Context, selector string) error {
	if err := a.checkOpen("click"); err != nil {
		return err
	}
	if a.browser == nil {
		return fmt.Errorf("app %s is not a browser app, click is unavailable", a.Config.Name)
	}
	return a.browser.click(selector, a.timeout(ctx))
}

// Fill types value into the first element matching selector.
func (a *AppContext) Fill(ctx context.Context, selector, value string) error {
	if err := a.checkOpen("fill"); err != nil {
		return err
	}
	if a.browser == nil {
		return fmt.Errorf("app %s is not a browser app, fill is unavailable", a.Config.Name)
	}
	return a.browser.fill(selector, value, a.timeout(ctx))
}

// SelectorVisible reports whether an element matching selector is visible.
func (a *AppContext) SelectorVisible(selector string) (bool, error) {
	if err := a.checkOpen("check selector visibility"); err != nil {
		return false, err
	}
	if a.browser == nil {
		return false, fmt.Errorf("app %s is not a browser app", a.Config.Name)
	}
	return a.browser.visible(selector)
}

// SelectorText returns the text content of the first element matching
// selector.
func (a *AppContext) SelectorText(selector string) (string, error) {
	if err := a.checkOpen("read selector text"); err != nil {
		return "", err
	}
	if a.browser == nil {
		return "", fmt.Errorf("app %s is not a browser app", a.Config.Name)
	}
	return a.browser.text(selector)
}

// Request performs one HTTP call scoped to the base URL and returns the fully
// read response.
func (a *AppContext) Request(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	if err := a.checkOpen("request"); err != nil {
		return nil, err
	}

	resp, err := a.http.do(ctx, method, path, opts)
	if err != nil {
		url := a.Config.URL(path)
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			url = path
		}
		return nil, &RequestError{
			App:         a.Config.Name,
			Environment: a.Config.Environment,
			Method:      method,
			URL:         url,
			Err:         err,
		}
	}

	logging.Debug("AppContext", "%s %s -> %d (%s)", method, path, resp.Status, resp.Duration.Round(time.Millisecond))
	return resp, nil
}

// Screenshot captures the current page into the run's screenshots directory
// and returns the file path. Browser apps only.
func (a *AppContext) Screenshot(name string) (string, error) {
	if err := a.checkOpen("screenshot"); err != nil {
		return "", err
	}
	if a.browser == nil {
		return "", fmt.Errorf("app %s is not a browser app, screenshots are unavailable", a.Config.Name)
	}

	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	path := filepath.Join(a.opts.ArtifactDir, "screenshots", name)
	if err := a.browser.screenshot(path); err != nil {
		return "", fmt.Errorf("capturing screenshot for app %s: %w", a.Config.Name, err)
	}
	return path, nil
}

// TracePath returns where this context's trace will be written on Close, or
// empty when tracing is off.
func (a *AppContext) TracePath() string {
	if a.browser == nil || !a.opts.Trace {
		return ""
	}
	return filepath.Join(a.opts.ArtifactDir, "traces",
		fmt.Sprintf("%s-%s.trace.zip", a.Config.Name, a.ID))
}

// Close releases the underlying sessions. It is idempotent; only the first
// call tears down, later calls return nil.
func (a *AppContext) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	a.http.close()

	var err error
	if a.browser != nil {
		err = a.browser.close(a.TracePath())
	}

	logging.Debug("AppContext", "closed context %s for app %s", a.ID, a.Config.Name)
	return err
}

// timeout derives the effective operation timeout. The app's default timeout
// is always the upper bound; a tighter context deadline narrows it further,
// but a run-level deadline far in the future never widens a single
// navigation or click beyond the app default.
func (a *AppContext) timeout(ctx context.Context) time.Duration {
	limit := a.Config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 && remaining < limit {
			return remaining
		}
	}
	return limit
}

func (a *AppContext) checkOpen(op string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return &ContextClosedError{App: a.Config.Name, Op: op}
	}
	return nil
}
