package types

// AccessTuple is a single entry of an EIP-2930 access list: an address and
// the set of storage keys within it that should be pre-warmed.
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// AccessList is an EIP-2930 access list: a list of addresses and storage
// keys that a transaction pre-declares it will touch, pre-paid at a
// discounted rate relative to a cold EIP-2929 access encountered mid-execution.
type AccessList []AccessTuple

// StorageKeys returns the total number of storage keys across all tuples.
func (al AccessList) StorageKeys() int {
	n := 0
	for _, tuple := range al {
		n += len(tuple.StorageKeys)
	}
	return n
}
