package lib

import "encoding/base64"

// Base64Decode decodes a standard (padded) base64 string, the encoding the
// submission endpoint uses on the wire.
func Base64Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

// Base64Encode base64-encodes text with the standard alphabet.
func Base64Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}
