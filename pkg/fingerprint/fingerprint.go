// Package fingerprint computes the canonical TestFingerprint used to key the
// cache store: an md5 hex digest over the canonical JSON encoding of the
// result-affecting subset of a test's inputs. This is the one place in the
// engine that reaches for the standard library's hashing over a third-party
// alternative — the wire format is mandated by name (md5 hex over canonical
// JSON), so there is no library to ground it on beyond encoding/json itself.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/ravensec/xssentinel/pkg/model"
)

type relevantOptions struct {
	Browser        model.Browser `json:"browser"`
	VerifyExecution bool         `json:"verifyExecution"`
	SubmitSelector string        `json:"submitSelector"`
}

type canonicalKey struct {
	URL     string          `json:"url"`
	Locator string          `json:"locator"`
	Payload string          `json:"payload"`
	Options relevantOptions `json:"options"`
}

// Key derives a stable TestFingerprint for (url, locator, payload, options),
// including only the options that affect the result: browser, verify
// execution flag, and submit-button locator. It is stable under JSON key
// reordering because canonicalKey's field order is fixed by its struct
// definition and encoding/json always emits struct fields in declaration
// order.
func Key(url, locator, payload string, opts model.Options) model.TestFingerprint {
	k := canonicalKey{
		URL:     url,
		Locator: locator,
		Payload: payload,
		Options: relevantOptions{
			Browser:         opts.Browser,
			VerifyExecution: opts.VerifyExecution,
			SubmitSelector:  opts.SubmitSelector,
		},
	}
	// Marshal through a map once to guarantee object-key stability
	// independent of any future struct field reordering, then re-marshal
	// with sorted keys for a truly canonical byte stream.
	raw, err := json.Marshal(k)
	if err != nil {
		return model.TestFingerprint(hashBytes([]byte(err.Error())))
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return model.TestFingerprint(hashBytes(raw))
	}
	canonical := canonicalize(generic)
	return model.TestFingerprint(hashBytes(canonical))
}

// canonicalize produces a deterministic JSON byte stream for a decoded
// generic value by sorting object keys at every level.
func canonicalize(v interface{}) []byte {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := []byte{'{'}
		for i, k := range keys {
			if i > 0 {
				out = append(out, ',')
			}
			kb, _ := json.Marshal(k)
			out = append(out, kb...)
			out = append(out, ':')
			out = append(out, canonicalize(val[k])...)
		}
		out = append(out, '}')
		return out
	case []interface{}:
		out := []byte{'['}
		for i, item := range val {
			if i > 0 {
				out = append(out, ',')
			}
			out = append(out, canonicalize(item)...)
		}
		out = append(out, ']')
		return out
	default:
		b, _ := json.Marshal(val)
		return b
	}
}

func hashBytes(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
