package monitor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Evidence is one snapshot of everything the in-page script observed since
// the last reset.
type Evidence struct {
	Dialogs          []DialogEvent   `json:"dialogs"`
	ConsoleMessages  []ConsoleEvent  `json:"consoleMessages"`
	SinkWrites       []SinkEvent     `json:"sinkWrites"`
	Mutations        []MutationEvent `json:"mutations"`
	NetworkRequests  []NetworkEvent  `json:"networkRequests"`
	RuntimeErrors    []RuntimeError  `json:"runtimeErrors"`
	CSPViolations    []CSPViolation  `json:"cspViolations"`
}

type DialogEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ConsoleEvent struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type SinkEvent struct {
	Sink   string `json:"sink"`
	Marker string `json:"marker"`
}

type MutationEvent struct {
	Tag       string `json:"tag"`
	Attribute string `json:"attribute,omitempty"`
	Marker    string `json:"marker"`
}

type NetworkEvent struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

type RuntimeError struct {
	Message string `json:"message"`
	Source  string `json:"source"`
}

type CSPViolation struct {
	Directive  string `json:"directive"`
	BlockedURI string `json:"blockedURI"`
}

// suspiciousConsolePatterns are the substrings spec §4.3 treats as evidence
// that a console.log call is payload-related rather than ordinary page
// logging: the script records every console call, and Evaluate flags the
// ones whose text matches one of these.
var suspiciousConsolePatterns = []string{"xss", "alert", "script"}

func isSuspiciousConsoleText(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range suspiciousConsolePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Agent installs and reads the monitor script for one page across a
// sequence of payload attempts.
type Agent struct {
	page   *rod.Page
	marker string
}

// Install injects the monitor script so it runs before any page script on
// every subsequent navigation, and primes it immediately for the page's
// current document.
func Install(page *rod.Page, marker string) (*Agent, error) {
	if _, err := page.EvalOnNewDocument(script(marker)); err != nil {
		return nil, fmt.Errorf("install monitor script: %w", err)
	}
	if _, err := page.Eval(script(marker)); err != nil {
		return nil, fmt.Errorf("prime monitor script: %w", err)
	}
	return &Agent{page: page, marker: marker}, nil
}

// Snapshot reads and clears the evidence buffer. Call once per payload
// attempt, after the submission/wait step, so evidence never carries over
// between payloads sharing a page.
func (a *Agent) Snapshot() (Evidence, error) {
	res, err := a.page.Eval(snapshotExpression)
	if err != nil {
		return Evidence{}, fmt.Errorf("read monitor evidence: %w", err)
	}
	var ev Evidence
	if err := res.Value.Unmarshal(&ev); err != nil {
		return Evidence{}, fmt.Errorf("decode monitor evidence: %w", err)
	}
	return ev, nil
}

// NetworkHijackEvidence is populated by the CDP-level
// Network.requestWillBeSent listener as secondary egress evidence,
// supplementing the in-page fetch/XHR wrapper for requests issued outside
// the hooked JS APIs (e.g. <img src> set by a sink the script didn't wrap).
type NetworkHijackEvidence struct {
	mu       sync.Mutex
	Requests []NetworkEvent
}

// Snapshot returns a copy of the requests observed so far.
func (n *NetworkHijackEvidence) Snapshot() []NetworkEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NetworkEvent, len(n.Requests))
	copy(out, n.Requests)
	return out
}

// WatchNetwork subscribes to CDP's request-sent events for requests whose
// URL carries the marker. Grounded on the EachEvent subscription pattern
// used throughout the teacher's pkg/browser (e.g. dom_xss.go's alert/taint
// channels): EachEvent returns a function that blocks listening until the
// page closes, so callers run it with `go`. Cheap compared to a full
// request-interception hijack, since detection only needs to observe that a
// tainted URL reached the network layer, not to modify the request.
func WatchNetwork(page *rod.Page, marker string) (*NetworkHijackEvidence, func()) {
	out := &NetworkHijackEvidence{}
	wait := page.EachEvent(func(e *proto.NetworkRequestWillBeSent) {
		if marker != "" && strings.Contains(e.Request.URL, marker) {
			out.mu.Lock()
			out.Requests = append(out.Requests, NetworkEvent{Method: string(e.Request.Method), URL: e.Request.URL})
			out.mu.Unlock()
		}
	})
	return out, wait
}

// Verdict is the outcome of applying the engine contract's execution-
// evidence boolean logic to one snapshot.
type Verdict struct {
	Reflected bool
	Executed  bool
	Methods   []string
}

// Evaluate applies the verdict contract: execution is true when a dialog
// fired, a hooked sink received the tainted value, a DOM mutation carried
// the marker, a tainted value reached the network layer, or a console
// message contained suspicious text. Runtime-error and CSP-violation
// evidence is not consulted and never downgrades a positive verdict.
func Evaluate(ev Evidence, reflected bool, hijack *NetworkHijackEvidence) Verdict {
	v := Verdict{Reflected: reflected}

	if len(ev.Dialogs) > 0 {
		v.Executed = true
		v.Methods = append(v.Methods, "dialog")
	}
	if len(ev.SinkWrites) > 0 {
		v.Executed = true
		v.Methods = append(v.Methods, "sink-write")
	}
	if len(ev.Mutations) > 0 {
		v.Executed = true
		v.Methods = append(v.Methods, "dom-mutation")
	}
	if len(ev.NetworkRequests) > 0 || (hijack != nil && len(hijack.Snapshot()) > 0) {
		v.Executed = true
		v.Methods = append(v.Methods, "network-egress")
	}
	for _, c := range ev.ConsoleMessages {
		if isSuspiciousConsoleText(c.Text) {
			v.Executed = true
			v.Methods = append(v.Methods, "console")
			break
		}
	}
	return v
}
