// Package selector implements the Smart Payload Selector: context/compat
// filtering over the categorized corpus, effectiveness-based ranking, and
// the seven-bucket diversity pass named in the engine contract. Newly
// authored against the spec's algorithm — no single teacher file implements
// a diversity pass for XSS specifically, so this package's surrounding
// idioms (dedup-preserving-order, stable sort) are grounded on the general
// style of pkg/payloads/*.go rather than one dedicated source file.
package selector

import (
	"sort"
	"strings"

	"github.com/ravensec/xssentinel/pkg/contextanalysis"
	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/ravensec/xssentinel/pkg/payloads"
	"github.com/ravensec/xssentinel/pkg/store/effectiveness"
)

// Scorer reports effectiveness-derived scores for a payload; satisfied by
// *effectiveness.Store, narrowed here so the selector's tests can fake it.
type Scorer interface {
	Score(payload string, browser model.Browser) (reflectionScore, executionScore float64, totalTests int)
}

var _ Scorer = (*effectiveness.Store)(nil)

type bucket struct {
	name      string
	predicate func(string) bool
}

var diversityBuckets = []bucket{
	{"script-tag", func(p string) bool { return strings.Contains(p, "<script") }},
	{"img-tag", func(p string) bool { return strings.Contains(p, "<img") }},
	{"svg-tag", func(p string) bool { return strings.Contains(p, "<svg") }},
	{"iframe-tag", func(p string) bool { return strings.Contains(p, "<iframe") }},
	{"event-handler", func(p string) bool {
		for _, h := range []string{"onload", "onerror", "onclick", "onmouseover"} {
			if strings.Contains(p, h) {
				return true
			}
		}
		return false
	}},
	{"quote-breakout", func(p string) bool { return strings.ContainsAny(p, `"'`) }},
	{"scheme-injection", func(p string) bool {
		return strings.Contains(p, "javascript:") || strings.Contains(p, "data:")
	}},
}

// Select runs the full selection algorithm: gather compatible payloads from
// the categorized corpus and any caller-supplied custom payloads, dedup,
// rank by effectiveness when enabled, apply the diversity pass, and top up
// from other contexts' generic payloads.
func Select(ctx contextanalysis.Result, categories []model.PayloadCategory, custom []model.Payload, browser model.Browser, useEffectiveness bool, scorer Scorer, limit int) []model.Payload {
	ranked := gather(ctx, categories, custom, browser)

	if useEffectiveness && scorer != nil {
		ranked = rankByEffectiveness(ranked, browser, scorer)
	}

	selected := diversityPass(ranked, limit)

	if len(selected) < limit {
		selected = topUp(selected, ranked, limit)
	}
	if len(selected) < limit {
		selected = topUpGeneric(selected, ctx, browser, limit)
	}

	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

func gather(ctx contextanalysis.Result, categories []model.PayloadCategory, custom []model.Payload, browser model.Browser) []model.Payload {
	seen := make(map[string]bool)
	var out []model.Payload

	add := func(p model.Payload) {
		key := string(p.Context) + "|" + string(p.AttributeKind) + "|" + p.Value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}

	// Step 1: categories matching the detected context (and attribute kind)
	// compatible with the active browser.
	for _, cat := range categories {
		if cat.Context != ctx.Context {
			continue
		}
		if ctx.Context == model.ContextAttribute && cat.Attribute != ctx.AttributeKind {
			continue
		}
		if !categoryCompatible(cat, browser) {
			continue
		}
		for _, v := range cat.Payloads {
			add(model.Payload{Value: v, Context: cat.Context, AttributeKind: cat.Attribute, Browsers: cat.Browsers})
		}
	}

	// Step 2: browser-exclusive categories (singleton compat list == active
	// engine) regardless of detected context.
	for _, cat := range categories {
		if len(cat.Browsers) == 1 && cat.Browsers[0] == browser {
			for _, v := range cat.Payloads {
				add(model.Payload{Value: v, Context: cat.Context, AttributeKind: cat.Attribute, Browsers: cat.Browsers})
			}
		}
	}

	// Step 3: caller-supplied custom payloads, filtered by compatibility.
	for _, p := range custom {
		if p.CompatibleWith(browser) {
			add(p)
		}
	}

	return out
}

func categoryCompatible(cat model.PayloadCategory, browser model.Browser) bool {
	if len(cat.Browsers) == 0 {
		return true
	}
	for _, b := range cat.Browsers {
		if b == browser {
			return true
		}
	}
	return false
}

func rankByEffectiveness(list []model.Payload, browser model.Browser, scorer Scorer) []model.Payload {
	type scored struct {
		payload    model.Payload
		reflection float64
		execution  float64
	}
	rows := make([]scored, len(list))
	for i, p := range list {
		reflection, execution, _ := scorer.Score(p.Value, browser)
		rows[i] = scored{p, reflection, execution}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].execution != rows[j].execution {
			return rows[i].execution > rows[j].execution
		}
		return rows[i].reflection > rows[j].reflection
	})
	out := make([]model.Payload, len(rows))
	for i, r := range rows {
		out[i] = r.payload
	}
	return out
}

func diversityPass(ranked []model.Payload, limit int) []model.Payload {
	used := make(map[int]bool)
	var selected []model.Payload

	for _, b := range diversityBuckets {
		if limit > 0 && len(selected) >= limit {
			break
		}
		for i, p := range ranked {
			if used[i] {
				continue
			}
			if b.predicate(p.Value) {
				selected = append(selected, p)
				used[i] = true
				break
			}
		}
	}

	for i, p := range ranked {
		if limit > 0 && len(selected) >= limit {
			break
		}
		if used[i] {
			continue
		}
		selected = append(selected, p)
		used[i] = true
	}
	return selected
}

func topUp(selected, ranked []model.Payload, limit int) []model.Payload {
	seen := make(map[string]bool)
	for _, p := range selected {
		seen[p.Value] = true
	}
	for _, p := range ranked {
		if limit > 0 && len(selected) >= limit {
			break
		}
		if seen[p.Value] {
			continue
		}
		selected = append(selected, p)
		seen[p.Value] = true
	}
	return selected
}

func topUpGeneric(selected []model.Payload, ctx contextanalysis.Result, browser model.Browser, limit int) []model.Payload {
	seen := make(map[string]bool)
	for _, p := range selected {
		seen[p.Value] = true
	}
	for _, v := range payloads.GenericPayloads() {
		if limit > 0 && len(selected) >= limit {
			break
		}
		if seen[v] {
			continue
		}
		selected = append(selected, model.Payload{Value: v, Context: ctx.Context})
		seen[v] = true
	}
	return selected
}
