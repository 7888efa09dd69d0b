// Package contextanalysis implements the Context Analyzer: URL heuristics
// over the target URL plus page heuristics that walk the input element's
// ancestors inside the live browser. The ancestor walk itself is grounded
// on the state-machine shape of the teacher's
// pkg/scan/reflection/context.go (DetectContexts), but runs entirely
// client-side via a single page.Eval call instead of regex-scanning an
// HTTP response body, since this engine's selector acts on the live DOM,
// not a static reflection scan.
package contextanalysis

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"

	"github.com/ravensec/xssentinel/pkg/model"
)

// Result is the context analyzer's output.
type Result struct {
	Context       model.Context
	AttributeKind model.AttributeKind
}

var urlKeywordContexts = []struct {
	keywords []string
	context  model.Context
}{
	{[]string{"callback", "jsonp", "function", "js", "script"}, model.ContextJS},
	{[]string{"url", "redirect", "return", "next", "target", "path", "goto"}, model.ContextURL},
	{[]string{"style", "css", "theme", "color"}, model.ContextCSS},
}

// FromURL applies the URL heuristics: the first parameter-name match wins,
// else HTML.
func FromURL(rawURL string) model.Context {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.ContextHTML
	}
	params := parsed.Query()
	for _, rule := range urlKeywordContexts {
		for param := range params {
			lower := strings.ToLower(param)
			for _, kw := range rule.keywords {
				if strings.Contains(lower, kw) {
					return rule.context
				}
			}
		}
	}
	return model.ContextHTML
}

// pageAncestorScript is evaluated once in the page and returns a summary of
// the input element's ancestor chain — the single round-trip the design
// notes require instead of N separate queries.
const pageAncestorScript = `(selector) => {
	const el = document.querySelector(selector);
	if (!el) return null;
	let node = el;
	const chain = [];
	while (node && node.nodeType === 1) {
		const attrs = [];
		for (const attr of node.attributes || []) {
			attrs.push(attr.name);
		}
		chain.push({ tag: node.tagName.toLowerCase(), attrs: attrs });
		node = node.parentElement;
	}
	return chain;
}`

type ancestorFrame struct {
	Tag   string   `json:"tag"`
	Attrs []string `json:"attrs"`
}

// FromPage walks the ancestor chain of inputLocator inside page and
// overrides the URL-derived context per the page heuristics: script/style
// ancestry wins outright; otherwise the element's own attributes determine
// ATTRIBUTE vs URL vs HTML.
func FromPage(page *rod.Page, inputLocator string) (Result, error) {
	obj, err := page.Eval(pageAncestorScript, inputLocator)
	if err != nil {
		return Result{}, err
	}

	var chain []ancestorFrame
	if err := obj.Value.Unmarshal(&chain); err != nil {
		return Result{}, err
	}
	if len(chain) == 0 {
		return Result{Context: model.ContextHTML}, nil
	}

	for _, frame := range chain {
		if frame.Tag == "script" {
			return Result{Context: model.ContextJS}, nil
		}
		if frame.Tag == "style" {
			return Result{Context: model.ContextCSS}, nil
		}
	}

	self := chain[0]
	for _, attr := range self.Attrs {
		if strings.HasPrefix(attr, "on") {
			return Result{Context: model.ContextAttribute, AttributeKind: model.AttributeEventHandler}, nil
		}
	}
	if len(self.Attrs) > 0 {
		return Result{Context: model.ContextAttribute, AttributeKind: model.AttributeUnquoted}, nil
	}
	if self.Tag == "a" || contains(self.Attrs, "href") || contains(self.Attrs, "src") || contains(self.Attrs, "action") {
		return Result{Context: model.ContextURL}, nil
	}
	return Result{Context: model.ContextHTML}, nil
}

func contains(attrs []string, name string) bool {
	for _, a := range attrs {
		if a == name {
			return true
		}
	}
	return false
}

// Analyze combines the URL and page heuristics: page heuristics override
// the URL-derived context when the page analysis succeeds.
func Analyze(page *rod.Page, rawURL, inputLocator string) Result {
	urlContext := FromURL(rawURL)
	pageResult, err := FromPage(page, inputLocator)
	if err != nil {
		return Result{Context: urlContext}
	}
	return pageResult
}
