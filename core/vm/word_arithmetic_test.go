package vm

import (
	"math/big"
	"testing"
)

func newPC() *uint64 {
	var pc uint64
	return &pc
}

// SDIV(MIN, -1) = MIN (spec.md §4.A's two's-complement boundary rule).
// opSdiv's dividend is the popped top of stack and the divisor is the item
// below it (the same a-on-top convention opSub uses), so the divisor must be
// pushed first and the dividend pushed last.
func TestSdivMinByNegativeOneIsMin(t *testing.T) {
	st := NewStack()
	minWord := new(big.Int).Lsh(big.NewInt(1), 255) // 1 << 255, the two's-complement MIN
	negOne := new(big.Int).Sub(tt256, big.NewInt(1))
	_ = st.Push(negOne) // divisor
	_ = st.Push(minWord) // dividend (top)
	pc := newPC()
	_, err := opSdiv(pc, nil, nil, nil, st)
	if err != nil {
		t.Fatalf("opSdiv error: %v", err)
	}
	if st.Peek().Cmp(minWord) != 0 {
		t.Fatalf("SDIV(MIN, -1) = %x, want MIN (%x)", st.Peek(), minWord)
	}
}

// SMOD(MIN, -1) = 0.
func TestSmodMinByNegativeOneIsZero(t *testing.T) {
	st := NewStack()
	minWord := new(big.Int).Lsh(big.NewInt(1), 255)
	negOne := new(big.Int).Sub(tt256, big.NewInt(1))
	_ = st.Push(negOne) // divisor
	_ = st.Push(minWord) // dividend (top)
	pc := newPC()
	_, err := opSmod(pc, nil, nil, nil, st)
	if err != nil {
		t.Fatalf("opSmod error: %v", err)
	}
	if st.Peek().Sign() != 0 {
		t.Fatalf("SMOD(MIN, -1) = %x, want 0", st.Peek())
	}
}

// Division by zero returns 0, no trap.
func TestSdivByZeroIsZero(t *testing.T) {
	st := NewStack()
	_ = st.Push(big.NewInt(0)) // divisor
	_ = st.Push(big.NewInt(7)) // dividend (top)
	pc := newPC()
	if _, err := opSdiv(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opSdiv error: %v", err)
	}
	if st.Peek().Sign() != 0 {
		t.Fatalf("SDIV(7, 0) = %v, want 0", st.Peek())
	}
}

// ADDMOD/MULMOD compute with ≥512-bit intermediate precision: a near-2^256
// sum or product that would overflow a naive 256-bit add/multiply must
// still reduce correctly mod m.
func TestAddmodWidePrecision(t *testing.T) {
	st := NewStack()
	x := new(big.Int).Sub(tt256, big.NewInt(1)) // 2^256 - 1
	y := new(big.Int).Sub(tt256, big.NewInt(1))
	m := big.NewInt(7)
	// opAddmod pops the two addends (top first) and peeks the modulus
	// beneath them, so the modulus is pushed first. A copy is pushed because
	// the result overwrites that stack word in place.
	_ = st.Push(new(big.Int).Set(m))
	_ = st.Push(y)
	_ = st.Push(x)
	pc := newPC()
	if _, err := opAddmod(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opAddmod error: %v", err)
	}
	want := new(big.Int).Mod(new(big.Int).Add(x, y), m)
	if st.Peek().Cmp(want) != 0 {
		t.Fatalf("ADDMOD = %v, want %v", st.Peek(), want)
	}
}

func TestAddmodModuloZeroIsZero(t *testing.T) {
	st := NewStack()
	_ = st.Push(big.NewInt(0)) // modulus
	_ = st.Push(big.NewInt(5))
	_ = st.Push(big.NewInt(5))
	pc := newPC()
	if _, err := opAddmod(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opAddmod error: %v", err)
	}
	if st.Peek().Sign() != 0 {
		t.Fatalf("ADDMOD(_, _, 0) = %v, want 0", st.Peek())
	}
}

func TestMulmodWidePrecision(t *testing.T) {
	st := NewStack()
	x := new(big.Int).Sub(tt256, big.NewInt(1))
	y := new(big.Int).Sub(tt256, big.NewInt(2))
	m := big.NewInt(97)
	_ = st.Push(new(big.Int).Set(m))
	_ = st.Push(y)
	_ = st.Push(x)
	pc := newPC()
	if _, err := opMulmod(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opMulmod error: %v", err)
	}
	want := new(big.Int).Mod(new(big.Int).Mul(x, y), m)
	if st.Peek().Cmp(want) != 0 {
		t.Fatalf("MULMOD = %v, want %v", st.Peek(), want)
	}
}

// SIGNEXTEND: i >= 32 is a no-op; otherwise byte i's sign bit replicates up.
func TestSignExtend(t *testing.T) {
	st := NewStack()
	_ = st.Push(big.NewInt(0x7f)) // value: byte 0 = 0x7f, sign bit 0
	_ = st.Push(big.NewInt(0))    // i = 0
	pc := newPC()
	if _, err := opSignExtend(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opSignExtend error: %v", err)
	}
	if st.Peek().Cmp(big.NewInt(0x7f)) != 0 {
		t.Fatalf("SIGNEXTEND(0, 0x7f) = %x, want 0x7f (positive sign byte is a no-op)", st.Peek())
	}

	st2 := NewStack()
	_ = st2.Push(big.NewInt(0xff)) // byte 0 = 0xff, sign bit set
	_ = st2.Push(big.NewInt(0))
	pc2 := newPC()
	if _, err := opSignExtend(pc2, nil, nil, nil, st2); err != nil {
		t.Fatalf("opSignExtend error: %v", err)
	}
	if st2.Peek().Cmp(tt256m1) != 0 {
		t.Fatalf("SIGNEXTEND(0, 0xff) = %x, want all-ones (-1)", st2.Peek())
	}
}

func TestSignExtendNoOpAboveThreshold(t *testing.T) {
	st := NewStack()
	x := big.NewInt(0x1234)
	_ = st.Push(new(big.Int).Set(x))
	_ = st.Push(big.NewInt(32)) // i >= 32
	pc := newPC()
	if _, err := opSignExtend(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opSignExtend error: %v", err)
	}
	if st.Peek().Cmp(x) != 0 {
		t.Fatalf("SIGNEXTEND(32, x) = %x, want unchanged x = %x", st.Peek(), x)
	}
}

// SHL/SHR: shift >= 256 yields 0.
func TestShlShrSaturateAtWidth(t *testing.T) {
	for _, op := range []struct {
		name string
		fn   func(*uint64, *EVM, *Contract, *Memory, *Stack) ([]byte, error)
	}{
		{"SHL", opSHL},
		{"SHR", opSHR},
	} {
		st := NewStack()
		_ = st.Push(big.NewInt(123))
		_ = st.Push(big.NewInt(256))
		pc := newPC()
		if _, err := op.fn(pc, nil, nil, nil, st); err != nil {
			t.Fatalf("%s error: %v", op.name, err)
		}
		if st.Peek().Sign() != 0 {
			t.Fatalf("%s(256, 123) = %v, want 0", op.name, st.Peek())
		}
	}
}

// SAR with shift >= 256: 0 if x >= 0, all-ones if x < 0.
func TestSarSaturateAtWidth(t *testing.T) {
	st := NewStack()
	_ = st.Push(big.NewInt(5)) // non-negative
	_ = st.Push(big.NewInt(300))
	pc := newPC()
	if _, err := opSAR(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opSAR error: %v", err)
	}
	if st.Peek().Sign() != 0 {
		t.Fatalf("SAR(300, 5) = %v, want 0", st.Peek())
	}

	st2 := NewStack()
	_ = st2.Push(new(big.Int).Set(tt256m1)) // -1
	_ = st2.Push(big.NewInt(300))
	pc2 := newPC()
	if _, err := opSAR(pc2, nil, nil, nil, st2); err != nil {
		t.Fatalf("opSAR error: %v", err)
	}
	if st2.Peek().Cmp(tt256m1) != 0 {
		t.Fatalf("SAR(300, -1) = %x, want all-ones", st2.Peek())
	}
}

// BYTE(i, x): 0 if i >= 32, else the i-th byte from the most-significant end.
func TestByteExtraction(t *testing.T) {
	st := NewStack()
	x := new(big.Int).SetBytes([]byte{0x01, 0x02, 0x03})
	_ = st.Push(new(big.Int).Set(x))
	_ = st.Push(big.NewInt(31)) // least-significant byte
	pc := newPC()
	if _, err := opByte(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opByte error: %v", err)
	}
	if st.Peek().Cmp(big.NewInt(0x03)) != 0 {
		t.Fatalf("BYTE(31, x) = %v, want 0x03", st.Peek())
	}
}

func TestByteOutOfRangeIsZero(t *testing.T) {
	st := NewStack()
	_ = st.Push(big.NewInt(0xff))
	_ = st.Push(big.NewInt(32))
	pc := newPC()
	if _, err := opByte(pc, nil, nil, nil, st); err != nil {
		t.Fatalf("opByte error: %v", err)
	}
	if st.Peek().Sign() != 0 {
		t.Fatalf("BYTE(32, x) = %v, want 0", st.Peek())
	}
}
