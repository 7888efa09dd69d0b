package selector

import (
	"testing"

	"github.com/ravensec/xssentinel/pkg/contextanalysis"
	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/ravensec/xssentinel/pkg/payloads"
	"github.com/stretchr/testify/require"
)

func TestSelectFiltersByContextAndCompat(t *testing.T) {
	categories := payloads.CategorizedFile()
	ctx := contextanalysis.Result{Context: model.ContextHTML}
	selected := Select(ctx, categories, nil, model.BrowserChromium, false, nil, 10)
	require.NotEmpty(t, selected)
	for _, p := range selected {
		require.True(t, p.CompatibleWith(model.BrowserChromium))
	}
}

func TestSelectDiversityHitsDistinctBuckets(t *testing.T) {
	categories := payloads.CategorizedFile()
	ctx := contextanalysis.Result{Context: model.ContextHTML}
	selected := Select(ctx, categories, nil, model.BrowserChromium, false, nil, 7)
	require.LessOrEqual(t, len(selected), 7)
	require.NotEmpty(t, selected)

	hit := map[string]bool{}
	for _, p := range selected {
		for _, b := range diversityBuckets {
			if b.predicate(p.Value) {
				hit[b.name] = true
			}
		}
	}
	require.GreaterOrEqual(t, len(hit), 6)
}

func TestSelectDedupsAcrossCustomAndCorpus(t *testing.T) {
	categories := payloads.CategorizedFile()
	ctx := contextanalysis.Result{Context: model.ContextHTML}
	custom := []model.Payload{{Value: "<script>alert(1)</script>", Context: model.ContextHTML}}
	selected := Select(ctx, categories, custom, model.BrowserChromium, false, nil, 100)

	counts := map[string]int{}
	for _, p := range selected {
		counts[p.Value]++
	}
	for value, count := range counts {
		require.Equal(t, 1, count, "payload %q duplicated", value)
	}
}

type fakeScorer struct {
	execution map[string]float64
}

func (f fakeScorer) Score(payload string, browser model.Browser) (float64, float64, int) {
	return 0, f.execution[payload], 1
}

func TestSelectRanksByEffectivenessWhenEnabled(t *testing.T) {
	categories := []model.PayloadCategory{
		{Name: "a", Context: model.ContextHTML, Browsers: []model.Browser{model.BrowserChromium}, Payloads: []string{"low", "high"}},
	}
	ctx := contextanalysis.Result{Context: model.ContextHTML}
	scorer := fakeScorer{execution: map[string]float64{"high": 0.9, "low": 0.1}}

	selected := Select(ctx, categories, nil, model.BrowserChromium, true, scorer, 10)
	require.Equal(t, "high", selected[0].Value)
}
