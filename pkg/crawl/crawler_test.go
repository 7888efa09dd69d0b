package crawl

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInputsPairsFieldWithSubmitButton(t *testing.T) {
	html := `<html><body>
		<form id="search">
			<input name="q" type="text">
			<button type="submit" id="go">Search</button>
		</form>
	</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	found := extractInputs(doc, "https://example.com/search")
	require.Len(t, found, 1)
	assert.Equal(t, `input[name="q"]`, found[0].Selector)
	assert.Equal(t, "#go", found[0].SubmitSelector)
}

func TestExtractInputsSkipsUnnamedFields(t *testing.T) {
	html := `<form><input type="text"></form>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	require.Empty(t, extractInputs(doc, "https://example.com"))
}

func TestResolveHandlesRelativeLinks(t *testing.T) {
	assert.Equal(t, "https://example.com/about", resolve("https://example.com/home", "/about"))
	assert.Equal(t, "https://example.com/a?x=1", resolve("https://example.com/", "a?x=1"))
	assert.Equal(t, "", resolve("https://example.com/", "%zz"))
}

func TestRegistrableDomainIgnoresSubdomain(t *testing.T) {
	assert.Equal(t, registrableDomain("https://www.example.com/a"), registrableDomain("https://shop.example.com/b"))
}
