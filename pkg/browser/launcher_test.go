package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMajorMinorPatchStripsHeadlessChromePrefix(t *testing.T) {
	assert.Equal(t, "120.0.6099", majorMinorPatch("HeadlessChrome/120.0.6099.109"))
}

func TestMajorMinorPatchPassesThroughBareVersion(t *testing.T) {
	assert.Equal(t, "120.0.6099", majorMinorPatch("120.0.6099.109"))
}
