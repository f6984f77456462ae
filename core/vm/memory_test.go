package vm

import (
	"math/big"
	"testing"
)

// P3: memory length is always a multiple of 32 bytes.
func TestMemoryResizeWordAligned(t *testing.T) {
	m := NewMemory()
	m.Resize(1) // callers are expected to pre-round; Resize itself just grows to the requested size
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (Resize does not itself round)", m.Len())
	}
	m2 := NewMemory()
	m2.Resize(32)
	if m2.Len()%32 != 0 {
		t.Fatalf("Len = %d, not a multiple of 32", m2.Len())
	}
}

// L3: MSTORE(off, x); MLOAD(off) == x.
func TestMemorySet32Roundtrip(t *testing.T) {
	m := NewMemory()
	m.Resize(64)
	x := new(big.Int).SetBytes([]byte{0xde, 0xad, 0xbe, 0xef})
	m.Set32(0, x)
	got := new(big.Int).SetBytes(m.Get(0, 32))
	if got.Cmp(x) != 0 {
		t.Fatalf("roundtrip = %x, want %x", got, x)
	}
}

func TestMemorySetWritesExactBytes(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 4, []byte{1, 2, 3, 4})
	got := m.Get(0, 4)
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Get = %v, want %v", got, want)
		}
	}
}

func TestMemoryGasCostQuadratic(t *testing.T) {
	// spec.md §3: cost(n) = 3n + n^2/512, n = word count.
	cases := []struct {
		words uint64
		want  uint64
	}{
		{0, 0},
		{1, 3},
		{2, 6},
		{512, 512*3 + 512},
	}
	for _, c := range cases {
		got := MemoryGasCost(c.words * 32)
		if got != c.want {
			t.Fatalf("MemoryGasCost(%d words) = %d, want %d", c.words, got, c.want)
		}
	}
}

func TestMemoryExpansionGasIsDifferenceOfTotals(t *testing.T) {
	old := MemoryGasCost(32)
	new_ := MemoryGasCost(96)
	diff := MemoryExpansionGas(32, 96)
	if diff != new_-old {
		t.Fatalf("MemoryExpansionGas = %d, want %d", diff, new_-old)
	}
	if MemoryExpansionGas(96, 32) != 0 {
		t.Fatal("shrinking memory must never charge gas")
	}
}
