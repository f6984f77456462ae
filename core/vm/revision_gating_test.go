package vm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/0xys/evmstar/core/types"
)

// P7: an opcode gated to revision R fails with ErrInvalidInstruction at any
// earlier revision, and succeeds (or at least dispatches) from R onward.
func TestRevisionGatingInvalidBelowThreshold(t *testing.T) {
	cases := []struct {
		name    string
		op      byte
		gated   Revision // highest revision at which the opcode must NOT be available
		allowed Revision // lowest revision at which it must be available
	}{
		{"SELFBALANCE", byte(SELFBALANCE), Constantinople, Istanbul},
		{"CHAINID", byte(CHAINID), Constantinople, Istanbul},
		{"SHL", byte(SHL), Byzantium, Constantinople},
		{"SAR", byte(SAR), Byzantium, Constantinople},
		{"EXTCODEHASH", byte(EXTCODEHASH), Byzantium, Constantinople},
		{"STATICCALL", byte(STATICCALL), Homestead, Byzantium},
		{"DELEGATECALL", byte(DELEGATECALL), Frontier, Homestead},
		{"BASEFEE", byte(BASEFEE), Istanbul, London},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			evm := NewEVM(BlockContext{}, TxContext{}, Config{}, c.gated)
			contract := NewContract(types.Address{}, types.Address{}, big.NewInt(0), 100000)
			contract.Code = []byte{c.op}
			_, err := evm.Run(contract, nil)
			if !errors.Is(err, ErrInvalidInstruction) {
				t.Fatalf("%s at %v: err = %v, want ErrInvalidInstruction", c.name, c.gated, err)
			}

			evm2 := NewEVM(BlockContext{}, TxContext{}, Config{}, c.allowed)
			contract2 := NewContract(types.Address{}, types.Address{}, big.NewInt(0), 100000)
			contract2.Code = []byte{c.op}
			_, err2 := evm2.Run(contract2, nil)
			if errors.Is(err2, ErrInvalidInstruction) {
				t.Fatalf("%s at %v: got ErrInvalidInstruction, want the opcode to dispatch", c.name, c.allowed)
			}
		})
	}
}
