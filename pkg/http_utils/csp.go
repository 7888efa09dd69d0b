package http_utils

import (
	"regexp"
	"strings"
)

type CSPDirective string

const (
	DirectiveDefaultSrc    CSPDirective = "default-src"
	DirectiveScriptSrc     CSPDirective = "script-src"
	DirectiveStyleSrc      CSPDirective = "style-src"
	DirectiveImgSrc        CSPDirective = "img-src"
	DirectiveFontSrc       CSPDirective = "font-src"
	DirectiveConnectSrc    CSPDirective = "connect-src"
	DirectiveMediaSrc      CSPDirective = "media-src"
	DirectiveObjectSrc     CSPDirective = "object-src"
	DirectiveFrameSrc      CSPDirective = "frame-src"
	DirectiveChildSrc      CSPDirective = "child-src"
	DirectiveWorkerSrc     CSPDirective = "worker-src"
	DirectiveManifestSrc   CSPDirective = "manifest-src"
	DirectivePrefetchSrc   CSPDirective = "prefetch-src"
	DirectiveScriptSrcElem CSPDirective = "script-src-elem"
	DirectiveScriptSrcAttr CSPDirective = "script-src-attr"
	DirectiveStyleSrcElem  CSPDirective = "style-src-elem"
	DirectiveStyleSrcAttr  CSPDirective = "style-src-attr"
)

type CSPSourceValue string

const (
	SourceUnsafeInline  CSPSourceValue = "'unsafe-inline'"
	SourceUnsafeEval    CSPSourceValue = "'unsafe-eval'"
	SourceStrictDynamic CSPSourceValue = "'strict-dynamic'"
)

// CSPPolicy is a parsed Content-Security-Policy (or report-only variant),
// directive name to raw source-list tokens. It only implements the subset
// of analysis the Result Reducer's CSP-blocked check needs: whether the
// policy would have blocked the payload that ran, not a general
// policy-weakness audit.
type CSPPolicy struct {
	Directives map[CSPDirective][]string
	ReportOnly bool
	Raw        string
}

var noncePattern = regexp.MustCompile(`'nonce-[A-Za-z0-9+/=]+'`)
var hashPattern = regexp.MustCompile(`'sha(256|384|512)-[A-Za-z0-9+/=]+'`)

// ParseCSP splits a raw policy string into its directives, per
// https://www.w3.org/TR/CSP3/#parse-serialized-policy.
func ParseCSP(policyString string) *CSPPolicy {
	policy := &CSPPolicy{
		Directives: make(map[CSPDirective][]string),
		Raw:        policyString,
	}

	policyString = strings.TrimSpace(policyString)
	if policyString == "" {
		return policy
	}

	directives := strings.Split(policyString, ";")
	for _, directive := range directives {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}

		parts := strings.Fields(directive)
		if len(parts) == 0 {
			continue
		}

		directiveName := CSPDirective(strings.ToLower(parts[0]))
		var values []string
		if len(parts) > 1 {
			values = parts[1:]
		}
		policy.Directives[directiveName] = values
	}

	return policy
}

// GetEffectiveDirective resolves directive, falling back through the CSP
// fetch-directive inheritance chain (e.g. script-src-elem -> script-src ->
// default-src) when directive itself is absent from the policy.
func (p *CSPPolicy) GetEffectiveDirective(directive CSPDirective) []string {
	if values, ok := p.Directives[directive]; ok {
		return values
	}

	fallbacks := map[CSPDirective]CSPDirective{
		DirectiveScriptSrcElem: DirectiveScriptSrc,
		DirectiveScriptSrcAttr: DirectiveScriptSrc,
		DirectiveStyleSrcElem:  DirectiveStyleSrc,
		DirectiveStyleSrcAttr:  DirectiveStyleSrc,
		DirectiveWorkerSrc:     DirectiveChildSrc,
		DirectiveFrameSrc:      DirectiveChildSrc,
		DirectiveChildSrc:      DirectiveDefaultSrc,
		DirectiveScriptSrc:     DirectiveDefaultSrc,
		DirectiveStyleSrc:      DirectiveDefaultSrc,
		DirectiveImgSrc:        DirectiveDefaultSrc,
		DirectiveFontSrc:       DirectiveDefaultSrc,
		DirectiveConnectSrc:    DirectiveDefaultSrc,
		DirectiveMediaSrc:      DirectiveDefaultSrc,
		DirectiveObjectSrc:     DirectiveDefaultSrc,
		DirectiveManifestSrc:   DirectiveDefaultSrc,
		DirectivePrefetchSrc:   DirectiveDefaultSrc,
	}

	if fallback, ok := fallbacks[directive]; ok {
		if values, ok := p.Directives[fallback]; ok {
			return values
		}
		if fallback != DirectiveDefaultSrc {
			return p.GetEffectiveDirective(fallback)
		}
	}

	return nil
}

func (p *CSPPolicy) HasDirective(directive CSPDirective) bool {
	_, ok := p.Directives[directive]
	return ok
}

func (p *CSPPolicy) AllowsUnsafeInline(directive CSPDirective) bool {
	values := p.GetEffectiveDirective(directive)
	return containsSource(values, SourceUnsafeInline)
}

func (p *CSPPolicy) AllowsUnsafeEval(directive CSPDirective) bool {
	values := p.GetEffectiveDirective(directive)
	return containsSource(values, SourceUnsafeEval)
}

func (p *CSPPolicy) HasStrictDynamic(directive CSPDirective) bool {
	values := p.GetEffectiveDirective(directive)
	return containsSource(values, SourceStrictDynamic)
}

func (p *CSPPolicy) UsesNonces(directive CSPDirective) bool {
	values := p.GetEffectiveDirective(directive)
	for _, v := range values {
		if noncePattern.MatchString(v) {
			return true
		}
	}
	return false
}

func (p *CSPPolicy) UsesHashes(directive CSPDirective) bool {
	values := p.GetEffectiveDirective(directive)
	for _, v := range values {
		if hashPattern.MatchString(v) {
			return true
		}
	}
	return false
}

// BlocksInlineScripts reports whether the policy's effective script-src
// would prevent an injected inline <script> from running: either
// unsafe-inline is absent, or it's present but neutralized by
// strict-dynamic/a nonce/a hash per the CSP3 ignore-unsafe-inline rule.
func (p *CSPPolicy) BlocksInlineScripts() bool {
	if !p.HasDirective(DirectiveScriptSrc) && !p.HasDirective(DirectiveDefaultSrc) {
		return false
	}
	if p.AllowsUnsafeInline(DirectiveScriptSrc) {
		if !p.HasStrictDynamic(DirectiveScriptSrc) && !p.UsesNonces(DirectiveScriptSrc) && !p.UsesHashes(DirectiveScriptSrc) {
			return false
		}
	}
	return true
}

// BlocksEval reports whether the policy's effective script-src would
// prevent eval()-based execution (e.g. a payload relying on eval or
// Function()).
func (p *CSPPolicy) BlocksEval() bool {
	if !p.HasDirective(DirectiveScriptSrc) && !p.HasDirective(DirectiveDefaultSrc) {
		return false
	}
	return !p.AllowsUnsafeEval(DirectiveScriptSrc)
}

func containsSource(values []string, source CSPSourceValue) bool {
	target := strings.ToLower(string(source))
	for _, v := range values {
		if strings.ToLower(v) == target {
			return true
		}
	}
	return false
}
