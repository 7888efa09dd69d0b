// Package orchestrator implements DetectXSS, the engine's single public
// entry point: it drives one browser session through the full per-payload
// loop (navigate, authenticate, inject, submit, observe, score) and returns
// the accumulated TestResults.
//
// Grounded on the teacher's retry/timeout discipline in lib/timeout.go
// (DoWorkWithTimeout, generalized here into model.RetryPolicy), the
// submission fallback chain of pkg/web/forms.go and interact.go
// (AutoFillForm/SubmitForm/GetAndClickButtons), and the declarative action
// execution of pkg/browser/actions.go.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ravensec/xssentinel/pkg/browser"
	"github.com/ravensec/xssentinel/pkg/contextanalysis"
	"github.com/ravensec/xssentinel/pkg/fingerprint"
	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/ravensec/xssentinel/pkg/monitor"
	"github.com/ravensec/xssentinel/pkg/payloads"
	"github.com/ravensec/xssentinel/pkg/selector"
	"github.com/ravensec/xssentinel/pkg/store/cache"
	"github.com/ravensec/xssentinel/pkg/store/effectiveness"
)

// Stores bundles the two persistence layers DetectXSS consults; nil disables
// the corresponding feature regardless of options.
type Stores struct {
	Cache         *cache.Store
	Effectiveness *effectiveness.Store
}

// Engine runs detection jobs against one session manager and pair of
// stores. Constructed once per process (or per HTTP server) and reused
// across requests.
type Engine struct {
	Sessions *browser.Manager
	Stores   Stores
}

// NewEngine wires a session manager and stores into a ready-to-use engine.
func NewEngine(sessions *browser.Manager, stores Stores) *Engine {
	return &Engine{Sessions: sessions, Stores: stores}
}

// DetectXSS runs the full detection loop for one (url, inputLocator) pair.
// customPayloads is optional; when empty the smart selector's corpus
// candidates are used on their own.
func (e *Engine) DetectXSS(targetURL, inputLocator string, customPayloads []model.Payload, opts model.Options) ([]model.TestResult, error) {
	sessionName := opts.Session.ID
	if sessionName == "" {
		sessionName = browser.DefaultSessionName(targetURL)
	}

	session, err := e.Sessions.GetSession(sessionName, opts.Browser, opts.Session)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}

	page, err := session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("acquire page: %w", err)
	}
	defer func() {
		if opts.Session.CloseAfter {
			_ = e.Sessions.CloseSession(sessionName)
		} else {
			session.ReleasePage(page)
		}
	}()

	if opts.Timeouts.Global > 0 {
		ctx, cancel := newGlobalContext(opts.Timeouts.Global)
		defer cancel()
		page = page.Context(ctx)
	}

	if opts.Auth != nil {
		if err := e.authenticate(page, *opts.Auth, opts); err != nil {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
	}

	if err := e.withRetry(opts.Retry, model.RetryNavigation, func() error {
		return navigateWithTimeout(page, targetURL, opts.Timeouts.Navigation)
	}); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	if len(opts.PreActions) > 0 {
		if err := browser.ExecuteActions(page, opts.PreActions); err != nil {
			log.Warn().Err(err).Msg("pre-test action sequence failed, continuing")
		}
	}

	marker := uuid.NewString()[:8]
	agent, err := monitor.Install(page, marker)
	if err != nil {
		return nil, fmt.Errorf("install monitor: %w", err)
	}
	hijack, waitHijack := monitor.WatchNetwork(page, marker)
	go waitHijack()

	ctxResult := contextanalysis.Analyze(page, targetURL, inputLocator)

	selected := e.choosePayloads(ctxResult, customPayloads, opts)

	var results []model.TestResult
	for _, p := range selected {
		result := e.testPayload(page, agent, hijack, targetURL, inputLocator, p, marker, opts)
		results = append(results, result)
	}
	return results, nil
}

func (e *Engine) choosePayloads(ctxResult contextanalysis.Result, custom []model.Payload, opts model.Options) []model.Payload {
	limit := opts.SmartPayloadSelection.Limit
	if limit <= 0 {
		limit = 20
	}
	categories := payloads.CategorizedFile()

	var scorer selector.Scorer
	if opts.Effectiveness.UseEffectivePayloads && e.Stores.Effectiveness != nil {
		scorer = e.Stores.Effectiveness
	}

	if opts.SmartPayloadSelection.Enabled {
		return selector.Select(ctxResult, categories, custom, opts.Browser, scorer != nil, scorer, limit)
	}

	// Smart selection disabled: use custom payloads verbatim if supplied,
	// else fall back to the flat compatible corpus for the detected
	// context without the diversity/ranking passes.
	if len(custom) > 0 {
		return custom
	}
	flat := payloads.FlattenCategories(categories, opts.Browser)
	var out []model.Payload
	for _, p := range flat {
		if p.Context == ctxResult.Context {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) testPayload(page *rod.Page, agent *monitor.Agent, hijack *monitor.NetworkHijackEvidence, targetURL, inputLocator string, p model.Payload, marker string, opts model.Options) model.TestResult {
	value := payloads.WithMarker(p.Value, marker)
	fp := fingerprint.Key(targetURL, inputLocator, p.Value, opts)

	if opts.Cache.Enabled && e.Stores.Cache != nil {
		if cached, ok := e.Stores.Cache.Get(fp); ok && !cached.Expired(opts.Cache.MaxAge) {
			return model.TestResult{
				Payload:    p.Value,
				Reflected:  cached.Detected,
				Executed:   cached.Executed,
				URL:        targetURL,
				CapturedAt: cached.CapturedAt,
				FromCache:  true,
			}
		}
	}

	reflected, executed, methods := e.attempt(page, agent, hijack, inputLocator, value, opts)

	result := model.TestResult{
		Payload:          p.Value,
		Reflected:        reflected,
		Executed:         executed,
		URL:              targetURL,
		CapturedAt:       time.Now(),
		DetectionMethods: methods,
	}

	if opts.Cache.Enabled && e.Stores.Cache != nil {
		_ = e.Stores.Cache.Put(fp, model.CachedResult{Detected: reflected, Executed: executed, CapturedAt: result.CapturedAt})
	}
	if opts.Effectiveness.Track && e.Stores.Effectiveness != nil {
		_ = e.Stores.Effectiveness.Record(p.Value, reflected, executed, opts.Browser)
	}
	return result
}

func (e *Engine) attempt(page *rod.Page, agent *monitor.Agent, hijack *monitor.NetworkHijackEvidence, inputLocator, value string, opts model.Options) (bool, bool, []string) {
	if err := e.withRetry(opts.Retry, model.RetryInput, func() error {
		return fillInput(page, inputLocator, value)
	}); err != nil {
		log.Debug().Err(err).Str("locator", inputLocator).Msg("failed to fill input")
		return false, false, nil
	}

	if err := e.withRetry(opts.Retry, model.RetrySubmission, func() error {
		return submit(page, inputLocator, opts.SubmitSelector)
	}); err != nil {
		log.Debug().Err(err).Msg("submission fallback chain exhausted")
	}

	waitFor := opts.Timeouts.WaitFor
	if waitFor <= 0 {
		waitFor = 1500 * time.Millisecond
	}
	time.Sleep(waitFor)

	reflected := pageContains(page, value)

	ev, err := agent.Snapshot()
	if err != nil {
		log.Debug().Err(err).Msg("failed to snapshot monitor evidence")
		return reflected, false, nil
	}
	if !opts.VerifyExecution {
		return reflected, false, nil
	}
	verdict := monitor.Evaluate(ev, reflected, hijack)
	return verdict.Reflected, verdict.Executed, verdict.Methods
}

// fillInput locates the input and sets its value, clearing any prior
// content first.
func fillInput(page *rod.Page, locator, value string) error {
	el, err := page.Element(locator)
	if err != nil {
		return fmt.Errorf("locate input %q: %w", locator, err)
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	return el.Input(value)
}

// submit runs the fallback chain named in §4.4: an explicit submit
// selector, then Enter inside the input, then the owning form's submit
// event, then a synthetic bubbling change event. Grounded on the teacher's
// pkg/web/forms.go SubmitForm / interact.go GetAndClickButtons chain of
// "try the obvious thing, then degrade".
func submit(page *rod.Page, inputLocator, submitSelector string) error {
	if submitSelector != "" {
		if el, err := page.Element(submitSelector); err == nil {
			if err := el.Click(proto.InputMouseButtonLeft, 1); err == nil {
				return nil
			}
		}
	}

	if el, err := page.Element(inputLocator); err == nil {
		if err := el.Focus(); err == nil {
			if err := page.Keyboard.Type(input.Enter); err == nil {
				return nil
			}
		}
	}

	formSubmitScript := `(selector) => {
		const el = document.querySelector(selector);
		if (!el) return false;
		const form = el.closest('form');
		if (form) { form.requestSubmit ? form.requestSubmit() : form.submit(); return true; }
		return false;
	}`
	if res, err := page.Eval(formSubmitScript, inputLocator); err == nil {
		var submitted bool
		if err := res.Value.Unmarshal(&submitted); err == nil && submitted {
			return nil
		}
	}

	changeEventScript := `(selector) => {
		const el = document.querySelector(selector);
		if (!el) return false;
		el.dispatchEvent(new Event('change', { bubbles: true }));
		el.dispatchEvent(new Event('input', { bubbles: true }));
		return true;
	}`
	_, err := page.Eval(changeEventScript, inputLocator)
	return err
}

func pageContains(page *rod.Page, needle string) bool {
	html, err := page.HTML()
	if err != nil {
		return false
	}
	return strings.Contains(html, needle)
}

func newGlobalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func navigateWithTimeout(page *rod.Page, url string, timeout time.Duration) error {
	if err := page.Navigate(url); err != nil {
		return err
	}
	if timeout <= 0 {
		return page.WaitLoad()
	}
	return page.Timeout(timeout).WaitLoad()
}

func (e *Engine) authenticate(page *rod.Page, auth model.AuthRecipe, opts model.Options) error {
	if auth.IsLoggedInCheck != "" {
		if res, err := page.Eval(auth.IsLoggedInCheck); err == nil {
			var loggedIn bool
			if err := res.Value.Unmarshal(&loggedIn); err == nil && loggedIn {
				return nil
			}
		}
	}
	if err := page.Navigate(auth.URL); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	actions := []model.Action{
		{Type: model.ActionFill, Selector: auth.UsernameSelector, Value: auth.Username},
		{Type: model.ActionFill, Selector: auth.PasswordSelector, Value: auth.Password},
		{Type: model.ActionClick, Selector: auth.SubmitSelector},
		{Type: model.ActionWait, For: model.WaitLoad},
	}
	return browser.ExecuteActions(page, actions)
}

func (e *Engine) withRetry(policy model.RetryPolicy, op model.RetryOperation, fn func() error) error {
	err := fn()
	if err == nil || !policy.Allows(op) {
		return err
	}
	retryable := policy.Predicate
	if retryable == nil {
		retryable = func(err error) bool {
			msg := strings.ToLower(err.Error())
			for _, s := range []string{"timeout", "deadline exceeded", "navigation", "network", "not visible", "not stable", "not found", "cannot find"} {
				if strings.Contains(msg, s) {
					return true
				}
			}
			return false
		}
	}
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if !retryable(err) {
			return err
		}
		time.Sleep(policy.DelayForAttempt(attempt))
		err = fn()
		if err == nil {
			return nil
		}
	}
	return err
}
