// Package model holds the data types shared across the detection engine:
// payloads, test fingerprints, cached and effectiveness records, sessions.
package model

import "time"

// AttributeKind narrows a PayloadCategory or a detected ATTRIBUTE context.
type AttributeKind string

const (
	AttributeUnquoted     AttributeKind = "unquoted"
	AttributeSingleQuoted AttributeKind = "single-quoted"
	AttributeDoubleQuoted AttributeKind = "double-quoted"
	AttributeEventHandler AttributeKind = "event-handler"
)

// Context is the output of the context analyzer.
type Context string

const (
	ContextHTML      Context = "HTML"
	ContextAttribute Context = "ATTRIBUTE"
	ContextJS        Context = "JS"
	ContextURL       Context = "URL"
	ContextCSS       Context = "CSS"
)

// Browser identifies an engine the orchestrator can drive.
type Browser string

const (
	BrowserChromium Browser = "chromium"
	BrowserFirefox  Browser = "firefox"
	BrowserWebkit   Browser = "webkit"
)

// Payload is an opaque attack string tagged with the contexts and browsers
// it was authored for. Payloads need not be unique across categories; the
// selector is responsible for de-duplication.
type Payload struct {
	Value         string        `json:"value"`
	Context       Context       `json:"context"`
	AttributeKind AttributeKind `json:"attributeKind,omitempty"`
	Browsers      []Browser     `json:"browsers,omitempty"`
}

// CompatibleWith reports whether the payload may run against the given
// browser. An empty compatibility list means "all browsers".
func (p Payload) CompatibleWith(b Browser) bool {
	if len(p.Browsers) == 0 {
		return true
	}
	for _, candidate := range p.Browsers {
		if candidate == b {
			return true
		}
	}
	return false
}

// PayloadCategory is a named, described group of payloads sharing a context
// and compatibility set, as emitted by the categorized payload file.
type PayloadCategory struct {
	Name        string    `json:"category"`
	Description string    `json:"description"`
	Context     Context   `json:"context"`
	Attribute   AttributeKind `json:"attribute,omitempty"`
	Browsers    []Browser `json:"browserCompatibility"`
	Payloads    []string  `json:"payloads"`
}

// TestFingerprint is the canonical cache key for one (url, locator, payload,
// options) tuple.
type TestFingerprint string

// CachedResult is the value stored under a TestFingerprint.
type CachedResult struct {
	Detected   bool      `json:"detected"`
	Executed   bool      `json:"executed"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Expired reports whether the cached result is older than maxAge. maxAge==0
// means "never expires".
func (c CachedResult) Expired(maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return time.Since(c.CapturedAt) > maxAge
}

// BrowserCounters tracks reflected/executed totals scoped to one browser or
// globally for a payload.
type BrowserCounters struct {
	TotalTests     int       `json:"totalTests"`
	ReflectedCount int       `json:"reflectedCount"`
	ExecutedCount  int       `json:"executedCount"`
	LastTested     time.Time `json:"lastTested"`
}

// ReflectionScore is reflected/total, 0 when total==0.
func (c BrowserCounters) ReflectionScore() float64 {
	if c.TotalTests == 0 {
		return 0
	}
	return float64(c.ReflectedCount) / float64(c.TotalTests)
}

// ExecutionScore is executed/total, 0 when total==0.
func (c BrowserCounters) ExecutionScore() float64 {
	if c.TotalTests == 0 {
		return 0
	}
	return float64(c.ExecutedCount) / float64(c.TotalTests)
}

// EffectivenessRecord is the per-payload aggregate stored by the
// effectiveness store.
type EffectivenessRecord struct {
	Payload    string                     `json:"payload"`
	Global     BrowserCounters            `json:"global"`
	ByBrowser  map[Browser]*BrowserCounters `json:"byBrowser"`
}

// EffectivenessDocument is the whole persisted document.
type EffectivenessDocument struct {
	Records     map[string]*EffectivenessRecord `json:"records"`
	LastUpdated time.Time                       `json:"lastUpdated"`
	TotalTests  int                              `json:"totalTests"`
}

// TestResult is one payload's outcome within a job.
type TestResult struct {
	Payload    string    `json:"payload"`
	Reflected  bool      `json:"reflected"`
	Executed   bool      `json:"executed"`
	URL        string    `json:"url"`
	CapturedAt time.Time `json:"capturedAt"`
	FromCache  bool      `json:"fromCache"`

	// Informational, additive evidence — never used to downgrade a positive
	// verdict produced by the monitor's verdict contract.
	DetectionMethods []string `json:"detectionMethods,omitempty"`
	CSPBlocked       *bool    `json:"cspBlocked,omitempty"`
	Severity         string   `json:"severity,omitempty"`
	Confidence       float64  `json:"confidence,omitempty"`
}

// RetryOperation names an orchestrator step that may be retried.
type RetryOperation string

const (
	RetryNavigation RetryOperation = "navigation"
	RetrySubmission RetryOperation = "submission"
	RetryInput      RetryOperation = "input"
)

// RetryPolicy is the single strategy object every I/O site in the
// orchestrator consults before giving up on an operation.
type RetryPolicy struct {
	Enabled            bool
	MaxAttempts        int
	Delay              time.Duration
	ExponentialBackoff bool
	Operations         map[RetryOperation]bool
	// Predicate vetoes a retry by error; nil means the default predicate
	// (timeout/navigation/network/element-not-visible|stable|found) applies.
	Predicate func(error) bool
}

// Allows reports whether op is in the retry allowlist.
func (p RetryPolicy) Allows(op RetryOperation) bool {
	if !p.Enabled {
		return false
	}
	if len(p.Operations) == 0 {
		return true
	}
	return p.Operations[op]
}

// DelayForAttempt returns the delay to wait before the given 0-indexed retry
// attempt, honoring the exponential-backoff flag.
func (p RetryPolicy) DelayForAttempt(attempt int) time.Duration {
	if !p.ExponentialBackoff || attempt <= 0 {
		return p.Delay
	}
	d := p.Delay
	for i := 0; i < attempt; i++ {
		d *= 2
	}
	return d
}

// AuthRecipe is the declarative login recipe from options.auth.*.
type AuthRecipe struct {
	URL               string
	UsernameSelector  string
	PasswordSelector  string
	SubmitSelector    string
	Username          string
	Password          string
	IsLoggedInCheck   string
}

// Timeouts carries the distinct knobs named in §5 of the engine contract.
type Timeouts struct {
	Navigation time.Duration
	Action     time.Duration
	WaitFor    time.Duration
	Execution  time.Duration
	Global     time.Duration
}

// SessionOptions controls Session reuse semantics.
type SessionOptions struct {
	ID         string
	Reuse      bool
	Save       bool
	CloseAfter bool
}

// CacheOptions controls the Cache Store.
type CacheOptions struct {
	Enabled bool
	MaxAge  time.Duration
	Verbose bool
}

// EffectivenessOptions controls the Effectiveness Store.
type EffectivenessOptions struct {
	Track               bool
	UseEffectivePayloads bool
	Limit               int
}

// SmartSelectionOptions controls the Smart Payload Selector.
type SmartSelectionOptions struct {
	Enabled bool
	Limit   int
}

// ReportOptions is passed opaquely to the external reporter.
type ReportOptions struct {
	Format    string
	OutputDir string
	Filename  string
}

// LoggingOptions controls progress-stream verbosity.
type LoggingOptions struct {
	Verbose              bool
	ShowProgress         bool
	ProgressUpdateInterval time.Duration
}

// Options is the full option registry of §6, merged `persisted < provided`.
type Options struct {
	Browser               Browser
	SubmitSelector        string
	VerifyExecution       bool
	Timeouts              Timeouts
	Retry                 RetryPolicy
	Auth                  *AuthRecipe
	Session               SessionOptions
	Cache                 CacheOptions
	Effectiveness         EffectivenessOptions
	SmartPayloadSelection SmartSelectionOptions
	Report                ReportOptions
	Logging               LoggingOptions
	// PreActions is the supplemented pre-test action sequence (§5 of the
	// expanded spec) used to reach the input field, e.g. dismiss a cookie
	// banner, before the payload loop begins.
	PreActions []Action
}

// Action is one step of the declarative browser-action vocabulary shared by
// the login recipe and options.preActions.
type ActionType string

const (
	ActionNavigate   ActionType = "navigate"
	ActionClick      ActionType = "click"
	ActionFill       ActionType = "fill"
	ActionWait       ActionType = "wait"
	ActionAssert     ActionType = "assert"
	ActionScroll     ActionType = "scroll"
	ActionScreenshot ActionType = "screenshot"
	ActionSleep      ActionType = "sleep"
	ActionEvaluate   ActionType = "evaluate"
)

type WaitCondition string

const (
	WaitVisible WaitCondition = "visible"
	WaitHidden  WaitCondition = "hidden"
	WaitEnabled WaitCondition = "enabled"
	WaitLoad    WaitCondition = "load"
)

type AssertCondition string

const (
	AssertContains AssertCondition = "contains"
	AssertEquals   AssertCondition = "equals"
	AssertVisible  AssertCondition = "visible"
	AssertHidden   AssertCondition = "hidden"
)

type Action struct {
	Type       ActionType      `yaml:"type" json:"type"`
	Selector   string          `yaml:"selector,omitempty" json:"selector,omitempty"`
	Value      string          `yaml:"value,omitempty" json:"value,omitempty"`
	URL        string          `yaml:"url,omitempty" json:"url,omitempty"`
	For        WaitCondition   `yaml:"for,omitempty" json:"for,omitempty"`
	Condition  AssertCondition `yaml:"condition,omitempty" json:"condition,omitempty"`
	Duration   int             `yaml:"duration,omitempty" json:"duration,omitempty"`
	Expression string          `yaml:"expression,omitempty" json:"expression,omitempty"`
	File       string          `yaml:"file,omitempty" json:"file,omitempty"`
}

// Job is one unit of work for the Parallel Scheduler.
type Job struct {
	URL            string
	InputLocator   string
	SubmitSelector string
	Payloads       []Payload
	Options        Options
}

// JobResult is the scheduler's per-job outcome.
type JobResult struct {
	Job     Job
	Results []TestResult
	Err     error
}
