package monitor

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateDialogImpliesExecuted(t *testing.T) {
	ev := Evidence{Dialogs: []DialogEvent{{Type: "alert", Message: "1"}}}
	v := Evaluate(ev, true, nil)
	require.True(t, v.Executed)
	assert.Contains(t, v.Methods, "dialog")
}

func TestEvaluateReflectedOnlyDoesNotImplyExecuted(t *testing.T) {
	v := Evaluate(Evidence{}, true, nil)
	require.True(t, v.Reflected)
	require.False(t, v.Executed)
	require.Empty(t, v.Methods)
}

func TestEvaluateAccumulatesMultipleMethods(t *testing.T) {
	ev := Evidence{
		Dialogs:    []DialogEvent{{Type: "alert", Message: "1"}},
		SinkWrites: []SinkEvent{{Sink: "innerHTML", Marker: "xssentinel_taint_abc"}},
		Mutations:  []MutationEvent{{Tag: "img", Marker: "xssentinel_taint_abc"}},
	}
	v := Evaluate(ev, true, nil)
	assert.ElementsMatch(t, []string{"dialog", "sink-write", "dom-mutation"}, v.Methods)
}

func TestEvaluateSuspiciousConsoleTextMarksExecuted(t *testing.T) {
	for _, text := range []string{"xss fired", "alert triggered", "running script payload", "XSS in caps"} {
		ev := Evidence{ConsoleMessages: []ConsoleEvent{{Level: "log", Text: text}}}
		v := Evaluate(ev, false, nil)
		require.True(t, v.Executed, "text %q should mark executed", text)
		assert.Contains(t, v.Methods, "console")
	}
}

func TestEvaluateOrdinaryConsoleMessageIsIgnored(t *testing.T) {
	ev := Evidence{ConsoleMessages: []ConsoleEvent{{Level: "log", Text: "hello from the page"}}}
	v := Evaluate(ev, false, nil)
	require.False(t, v.Executed)
}

func TestEvaluateNetworkHijackCountsAsExecution(t *testing.T) {
	hijack := &NetworkHijackEvidence{Requests: []NetworkEvent{{Method: "GET", URL: "https://evil.example/x?q=xssentinel_taint_abc"}}}
	v := Evaluate(Evidence{}, false, hijack)
	require.True(t, v.Executed)
	assert.Contains(t, v.Methods, "network-egress")
}

func TestNetworkHijackEvidenceSnapshotIsConcurrencySafe(t *testing.T) {
	n := &NetworkHijackEvidence{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n.mu.Lock()
			n.Requests = append(n.Requests, NetworkEvent{Method: "GET", URL: "https://example.com"})
			n.mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, n.Snapshot(), 50)
}
