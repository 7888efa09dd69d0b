package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultSessionNameDerivesRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example-com", DefaultSessionName("https://app.example.com/login?next=/a"))
}

func TestDefaultSessionNameIsStableAcrossSubdomains(t *testing.T) {
	assert.Equal(t, DefaultSessionName("https://a.example.com/x"), DefaultSessionName("https://b.example.com/y"))
}

func TestDefaultSessionNameFallsBackOnUnparsableURL(t *testing.T) {
	assert.Equal(t, "default", DefaultSessionName("not a url"))
}
