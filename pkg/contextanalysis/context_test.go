package contextanalysis

import (
	"testing"

	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestFromURLKeywordPriority(t *testing.T) {
	require.Equal(t, model.ContextJS, FromURL("https://example.com/?callback=handle"))
	require.Equal(t, model.ContextURL, FromURL("https://example.com/?redirect=/home"))
	require.Equal(t, model.ContextCSS, FromURL("https://example.com/?theme=dark"))
	require.Equal(t, model.ContextHTML, FromURL("https://example.com/?q=search"))
}

func TestFromURLInvalidURLDefaultsHTML(t *testing.T) {
	require.Equal(t, model.ContextHTML, FromURL("://not a url"))
}
