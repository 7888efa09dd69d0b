package httpapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContainsPayloadFindsSubstring(t *testing.T) {
	require.True(t, containsPayload("<div>before <script>alert(1)</script> after</div>", "<script>alert(1)</script>"))
	require.False(t, containsPayload("<div>nothing here</div>", "<script>alert(1)</script>"))
	require.False(t, containsPayload("anything", ""))
}

func TestCSPHeaderValuesExtractsMatchingLines(t *testing.T) {
	block := "Content-Type: text/html\r\nContent-Security-Policy: default-src 'self'\r\nX-Frame-Options: DENY\r\n"
	values := cspHeaderValues(block)
	require.Equal(t, []string{"default-src 'self'"}, values)
}

func TestCSPHeaderValuesEmptyWhenAbsent(t *testing.T) {
	require.Empty(t, cspHeaderValues("Content-Type: text/html\r\n"))
}
