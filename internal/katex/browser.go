package katex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/labnotes/internal/process"
)

// DefaultTimeout bounds a single formula evaluation.
const DefaultTimeout = 10 * time.Second

const renderJS = `(tex, display) => katex.renderToString(tex, {displayMode: display, throwOnError: true})`

// BrowserRenderer typesets formulas with KaTeX inside headless Chrome.
// The browser is launched on first use and one page is shared by every
// call; calls are serialized.
type BrowserRenderer struct {
	timeout   time.Duration
	scriptURL string

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

// BrowserOption configures a BrowserRenderer.
type BrowserOption func(*BrowserRenderer)

// WithTimeout bounds each evaluation. Non-positive values keep the default.
func WithTimeout(d time.Duration) BrowserOption {
	return func(r *BrowserRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithScriptURL loads KaTeX from url instead of the CDN.
func WithScriptURL(url string) BrowserOption {
	return func(r *BrowserRenderer) {
		if url != "" {
			r.scriptURL = url
		}
	}
}

// NewBrowserRenderer creates a BrowserRenderer. No browser is started
// until the first Render.
func NewBrowserRenderer(opts ...BrowserOption) *BrowserRenderer {
	r := &BrowserRenderer{
		timeout:   DefaultTimeout,
		scriptURL: ScriptURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ensurePage lazily launches the browser and loads KaTeX. Caller holds mu.
func (r *BrowserRenderer) ensurePage() error {
	if r.page != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		r.shutdown()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		r.shutdown()
		return fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.Timeout(r.timeout).AddScriptTag(r.scriptURL, ""); err != nil {
		r.shutdown()
		return fmt.Errorf("%w: %s: %v", ErrPageLoad, r.scriptURL, err)
	}
	r.page = page
	return nil
}

// Render implements Renderer.
func (r *BrowserRenderer) Render(ctx context.Context, tex string, display bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensurePage(); err != nil {
		return "", err
	}

	res, err := r.page.Context(ctx).Timeout(r.timeout).Eval(renderJS, tex, display)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		var evalErr *rod.EvalError
		if errors.As(err, &evalErr) {
			return "", fmt.Errorf("%w: %s", ErrParse, exceptionMessage(evalErr))
		}
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return res.Value.Str(), nil
}

// exceptionMessage extracts the first line of a JavaScript exception,
// dropping the stack trace.
func exceptionMessage(e *rod.EvalError) string {
	msg := e.Error()
	if e.RuntimeExceptionDetails != nil && e.Exception != nil && e.Exception.Description != "" {
		msg = e.Exception.Description
	}
	msg, _, _ = strings.Cut(msg, "\n")
	return strings.TrimPrefix(msg, "ParseError: ")
}

// Head links the KaTeX stylesheet. The rendered markup needs no script.
func (r *BrowserRenderer) Head() string {
	return stylesheetLink
}

// Close stops the browser. The renderer may be used again afterwards and
// will start a new one.
func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shutdown()
}

// shutdown releases every browser resource. Caller holds mu.
func (r *BrowserRenderer) shutdown() error {
	var err error
	r.page = nil
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if pid := r.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}
