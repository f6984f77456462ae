package vm

// PrecompiledContract is implemented by native contracts living at fixed
// addresses. The interpreter core only detects and dispatches to them; the
// contracts themselves (keccak256, ecrecover, the bn256 curve ops, etc.) are
// supplied by the Host, which is out of scope here.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}
