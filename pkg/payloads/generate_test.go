package payloads

import (
	"testing"

	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestGenerateForContextDeterministic(t *testing.T) {
	a := GenerateForContext(model.ContextHTML, GenerateOptions{})
	b := GenerateForContext(model.ContextHTML, GenerateOptions{})
	require.Equal(t, a, b)
	require.NotEmpty(t, a)
}

func TestGenerateForContextAttributeEventHandler(t *testing.T) {
	payloads := GenerateForContext(model.ContextAttribute, GenerateOptions{AttributeKind: model.AttributeEventHandler})
	found := false
	for _, p := range payloads {
		if p == "alert(1)" {
			found = true
		}
	}
	require.True(t, found)
}

func TestGenerateForContextURLEncode(t *testing.T) {
	plain := GenerateForContext(model.ContextURL, GenerateOptions{})
	encoded := GenerateForContext(model.ContextURL, GenerateOptions{URLEncode: true})
	require.NotEqual(t, plain[0], encoded[0])
}

func TestCategorizedFileCoversAllContexts(t *testing.T) {
	categories := CategorizedFile()
	seen := map[model.Context]bool{}
	for _, c := range categories {
		seen[c.Context] = true
		require.NotEmpty(t, c.Payloads)
	}
	for _, ctx := range []model.Context{model.ContextHTML, model.ContextAttribute, model.ContextJS, model.ContextURL, model.ContextCSS} {
		require.True(t, seen[ctx], "missing context %s", ctx)
	}
}

func TestFlattenCategoriesDedupsAndFiltersCompat(t *testing.T) {
	categories := []model.PayloadCategory{
		{Name: "a", Context: model.ContextHTML, Browsers: []model.Browser{model.BrowserChromium}, Payloads: []string{"<script>alert(1)</script>", "<script>alert(1)</script>"}},
		{Name: "b", Context: model.ContextHTML, Browsers: []model.Browser{model.BrowserFirefox}, Payloads: []string{"<svg onload=alert(1)>"}},
	}
	flattened := FlattenCategories(categories, model.BrowserChromium)
	require.Len(t, flattened, 1)
}
