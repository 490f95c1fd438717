package digest

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"testing"
)

func TestStreamConcatenatesInOrder(t *testing.T) {
	cfg := Config{Algorithms: []Algorithm{SHA256, MD5}}
	out, err := cfg.Stream([]byte("anna"))
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if len(out) != 32+16 {
		t.Fatalf("stream length = %d, want %d", len(out), 32+16)
	}

	reordered := Config{Algorithms: []Algorithm{MD5, SHA256}}
	out2, err := reordered.Stream([]byte("anna"))
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if bytes.Equal(out, out2) {
		t.Fatalf("reordering algorithms did not change the stream")
	}
}

func TestStreamUsesHMACWhenKeyed(t *testing.T) {
	key := []byte("shared-key")
	cfg := Config{Algorithms: []Algorithm{SHA256}, Key: key}
	got, err := cfg.Stream([]byte("anna"))
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("anna"))
	want := mac.Sum(nil)

	if !bytes.Equal(got, want) {
		t.Fatalf("keyed stream does not match hmac.New(sha256, key)")
	}
}

func TestValidateRejectsEmptyAndUnknownAlgorithms(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty algorithm list")
	}
	if err := (Config{Algorithms: []Algorithm{"crc32"}}).Validate(); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
	if err := (Config{Algorithms: []Algorithm{SHA1, SHA512}}).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestExtractU32LE(t *testing.T) {
	stream := []byte{0x01, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff}
	got, err := ExtractU32LE(stream, 2)
	if err != nil {
		t.Fatalf("ExtractU32LE: %v", err)
	}
	if got[0] != 1 || got[1] != 0xffffffff {
		t.Fatalf("got %v, want [1, 4294967295]", got)
	}

	if _, err := ExtractU32LE(stream, 3); err == nil {
		t.Fatalf("expected error when stream is too short")
	}
}
