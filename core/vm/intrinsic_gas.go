package vm

import "github.com/0xys/evmstar/core/types"

// Intrinsic transaction gas cost constants (spec.md §4.C).
const (
	TxGas              uint64 = 21000
	TxGasContractCreation uint64 = 53000
	TxDataZeroGas      uint64 = 4
	TxDataNonZeroGasFrontier uint64 = 68 // pre-Istanbul
	TxDataNonZeroGasEIP2028  uint64 = 16 // Istanbul onward (EIP-2028)

	TxAccessListAddressGas    uint64 = 2400
	TxAccessListStorageKeyGas uint64 = 1900
)

// IntrinsicGas computes the base gas cost of a transaction before the
// interpreter's dispatch loop ever runs: 21000 plus calldata byte costs
// (a cheaper rate for zero bytes) plus, from Berlin onward, a flat cost
// per access-list address and storage key (EIP-2930). isContractCreation
// is accepted for parity with the original's txGas/txCreateGas split;
// CREATE/CREATE2 themselves are a Host concern (spec.md §1) and this
// function only prices the envelope, not the creation opcode.
func IntrinsicGas(data []byte, accessList types.AccessList, isContractCreation bool, rules ForkRules) uint64 {
	gas := TxGas
	if isContractCreation {
		gas += TxGasContractCreation - TxGas
	}

	nonZeroGas := TxDataNonZeroGasFrontier
	if rules.IsIstanbul {
		nonZeroGas = TxDataNonZeroGasEIP2028
	}

	var zeroBytes, nonZeroBytes uint64
	for _, b := range data {
		if b == 0 {
			zeroBytes++
		} else {
			nonZeroBytes++
		}
	}
	gas = safeAdd(gas, zeroBytes*TxDataZeroGas)
	gas = safeAdd(gas, nonZeroBytes*nonZeroGas)

	if rules.IsBerlin {
		gas = safeAdd(gas, uint64(len(accessList))*TxAccessListAddressGas)
		gas = safeAdd(gas, uint64(accessList.StorageKeys())*TxAccessListStorageKeyGas)
	}
	return gas
}

// ApplyRefundCap caps the accumulated refund counter at gasUsed/5, the
// single quotient EIP-3529 (London+) and every earlier revision back to
// EIP-1283 share (only the numbers the refund counter itself yields
// differ by revision, not the cap fraction). The interpreter only
// accumulates refund_counter (spec.md §4.I); applying the cap is an
// outer-executor responsibility, mirrored here as a free function rather
// than a method on EVM since nothing in the interpreter core calls it.
func ApplyRefundCap(gasUsed, refundCounter uint64) uint64 {
	limit := gasUsed / MaxRefundQuotient
	if refundCounter > limit {
		return limit
	}
	return refundCounter
}
