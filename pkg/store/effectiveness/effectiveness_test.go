package effectiveness

import (
	"path/filepath"
	"testing"

	"github.com/ravensec/xssentinel/pkg/model"
	"github.com/stretchr/testify/require"
)

func TestRecordAndScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effectiveness.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Record("<b>hi</b>", true, false, model.BrowserChromium))

	reflection, execution, total := store.Score("<b>hi</b>", model.BrowserChromium)
	require.Equal(t, 1, total)
	require.Equal(t, 1.0, reflection)
	require.Equal(t, 0.0, execution)
}

func TestCountersMonotonicAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effectiveness.json")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Record("<script>alert(1)</script>", true, true, model.BrowserChromium))

	reopened, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Record("<script>alert(1)</script>", true, true, model.BrowserChromium))

	_, execution, total := reopened.Score("<script>alert(1)</script>", model.BrowserChromium)
	require.Equal(t, 2, total)
	require.Equal(t, 1.0, execution)
}

func TestTopKOrdering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effectiveness.json")
	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.Record("weak", true, false, model.BrowserChromium))
	require.NoError(t, store.Record("strong", true, true, model.BrowserChromium))

	top := store.TopK(10, model.BrowserChromium)
	require.Len(t, top, 2)
	require.Equal(t, "strong", top[0].Payload)
}
