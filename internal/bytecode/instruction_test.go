package bytecode

import "testing"

func TestEncodeIndexRoundTrip(t *testing.T) {
	for _, idx := range []int{0, 1, 255, 1 << 20} {
		i := Encode(REFER, idx)
		if i.Op() != REFER {
			t.Fatalf("op = %v, want REFER", i.Op())
		}
		if i.Index() != idx {
			t.Fatalf("index = %d, want %d", i.Index(), idx)
		}
	}
}

func TestEncodeOffsetRoundTrip(t *testing.T) {
	for _, off := range []int{0, 1, -1, 1000, -1000} {
		i := EncodeOffset(TEST, off)
		if i.Op() != TEST {
			t.Fatalf("op = %v, want TEST", i.Op())
		}
		if i.Offset() != off {
			t.Fatalf("offset = %d, want %d", i.Offset(), off)
		}
	}
}

func TestZeroOffsetIsBiasMidpoint(t *testing.T) {
	i := EncodeOffset(JUMP, 0)
	if i.Index() != payloadBias {
		t.Fatalf("zero offset should encode as the bias midpoint %d, got %d", payloadBias, i.Index())
	}
}
