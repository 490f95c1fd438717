package hashscheme

import (
	"encoding/binary"
	"reflect"
	"testing"
)

func streamFromU32LE(values ...uint32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// TestDoubleHashScenario reproduces spec §8 scenario 1: filter size 32,
// k=5, h0=13, h1=37 -> positions {13,18,23,28,1}, popcount 5.
func TestDoubleHashScenario(t *testing.T) {
	stream := streamFromU32LE(13, 37)
	s := Scheme{Strategy: DoubleHash, K: 5}

	got, err := s.Positions(stream, 32)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}

	want := []int{13, 18, 23, 28, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("positions = %v, want %v", got, want)
	}
}

func TestPositionsAreDeterministic(t *testing.T) {
	stream := streamFromU32LE(99, 7, 42)
	s := Scheme{Strategy: TripleHash, K: 8}

	a, err := s.Positions(stream, 512)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	b, err := s.Positions(stream, 512)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("positions not deterministic: %v != %v", a, b)
	}
}

func TestPositionsInRange(t *testing.T) {
	stream := streamFromU32LE(123456789)
	s := Scheme{Strategy: RandomHash, K: 20}

	got, err := s.Positions(stream, 64)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	for _, p := range got {
		if p < 0 || p >= 64 {
			t.Fatalf("position %d out of range [0,64)", p)
		}
	}
}

func TestValidateRejectsBadK(t *testing.T) {
	s := Scheme{Strategy: DoubleHash, K: 0}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for k=0")
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	s := Scheme{Strategy: "bogus", K: 1}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
