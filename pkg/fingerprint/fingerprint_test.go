package fingerprint

import (
	"testing"

	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opts() model.Options {
	return model.Options{Browser: model.BrowserChromium, VerifyExecution: true, SubmitSelector: "#submit"}
}

func TestKeyStableAcrossCalls(t *testing.T) {
	a := Key("https://example.com", "input[name=q]", "<script>alert(1)</script>", opts())
	b := Key("https://example.com", "input[name=q]", "<script>alert(1)</script>", opts())
	require.Equal(t, a, b)
}

func TestKeyChangesWithPayload(t *testing.T) {
	a := Key("https://example.com", "input[name=q]", "<b>hi</b>", opts())
	b := Key("https://example.com", "input[name=q]", "<i>hi</i>", opts())
	assert.NotEqual(t, a, b)
}

func TestKeyIgnoresIrrelevantOptions(t *testing.T) {
	o1 := opts()
	o2 := opts()
	o2.Cache.Enabled = true
	o2.Retry.MaxAttempts = 5
	a := Key("https://example.com", "input[name=q]", "x", o1)
	b := Key("https://example.com", "input[name=q]", "x", o2)
	assert.Equal(t, a, b)
}

func TestKeyChangesWithResultAffectingOption(t *testing.T) {
	o1 := opts()
	o2 := opts()
	o2.Browser = model.BrowserFirefox
	a := Key("https://example.com", "input[name=q]", "x", o1)
	b := Key("https://example.com", "input[name=q]", "x", o2)
	assert.NotEqual(t, a, b)
}
