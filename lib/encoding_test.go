package lib

import "testing"

func TestBase64EncodeDecodeRoundTrip(t *testing.T) {
	encoded := Base64Encode("<script>alert(1)</script>")
	decoded, err := Base64Decode(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if string(decoded) != "<script>alert(1)</script>" {
		t.Errorf("got %q", decoded)
	}
}

func TestBase64DecodeRejectsInvalidInput(t *testing.T) {
	if _, err := Base64Decode("not base64!!"); err == nil {
		t.Error("expected an error for invalid base64 input")
	}
}
