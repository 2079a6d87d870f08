package testutils

import (
	"bytes"
	"testing"
)

func TestPayload(t *testing.T) {
	// Arrange
	fill := []byte("hello,")

	// Act
	b := Payload(fill, 1024*1024+3, []byte("END"))

	// Assert
	if len(b) != 1024*1024+3 {
		t.Fatalf("Unexpected length: %v", len(b))
	}

	if !bytes.HasPrefix(b, []byte("hello,hello,")) || !bytes.HasSuffix(b, []byte("END")) {
		t.Fatalf("Unexpected content: %q...%q", b[:12], b[len(b)-6:])
	}
}

func TestPayloadShorterThanTail(t *testing.T) {
	b := Payload(nil, 1, []byte("tail"))

	if string(b) != "tail" {
		t.Fatalf("Unexpected content: %q", b)
	}
}
