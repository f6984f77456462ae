package vm

import (
	"math/big"

	"github.com/0xys/evmstar/core/types"
)

// fakeStateDB is a minimal in-memory StateDB for interpreter tests. It
// mirrors go-ethereum's test-only "dummy statedb" pattern: plain maps, no
// persistence, snapshot/revert implemented as a linear undo log rather than
// copy-on-write, which is adequate for single-threaded unit tests.
type fakeStateDB struct {
	balances   map[types.Address]*big.Int
	nonces     map[types.Address]uint64
	code       map[types.Address][]byte
	codeHash   map[types.Address]types.Hash
	storage    map[types.Address]map[types.Hash]types.Hash
	committed  map[types.Address]map[types.Hash]types.Hash
	transient  map[types.Address]map[types.Hash]types.Hash
	destructed map[types.Address]bool
	exists     map[types.Address]bool
	logs       []*types.Log
	refund     uint64
	accessList *AccessListTracker

	undo []func()
}

func newFakeStateDB() *fakeStateDB {
	return &fakeStateDB{
		balances:   make(map[types.Address]*big.Int),
		nonces:     make(map[types.Address]uint64),
		code:       make(map[types.Address][]byte),
		codeHash:   make(map[types.Address]types.Hash),
		storage:    make(map[types.Address]map[types.Hash]types.Hash),
		committed:  make(map[types.Address]map[types.Hash]types.Hash),
		transient:  make(map[types.Address]map[types.Hash]types.Hash),
		destructed: make(map[types.Address]bool),
		exists:     make(map[types.Address]bool),
		accessList: NewAccessListTracker(),
	}
}

func (s *fakeStateDB) CreateAccount(addr types.Address) { s.exists[addr] = true }

func (s *fakeStateDB) GetBalance(addr types.Address) *big.Int {
	if b, ok := s.balances[addr]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (s *fakeStateDB) AddBalance(addr types.Address, amount *big.Int) {
	before := s.GetBalance(addr)
	s.balances[addr] = new(big.Int).Add(before, amount)
	s.undo = append(s.undo, func() { s.balances[addr] = before })
}

func (s *fakeStateDB) SubBalance(addr types.Address, amount *big.Int) {
	before := s.GetBalance(addr)
	s.balances[addr] = new(big.Int).Sub(before, amount)
	s.undo = append(s.undo, func() { s.balances[addr] = before })
}

func (s *fakeStateDB) GetNonce(addr types.Address) uint64      { return s.nonces[addr] }
func (s *fakeStateDB) SetNonce(addr types.Address, nonce uint64) { s.nonces[addr] = nonce }
func (s *fakeStateDB) GetCode(addr types.Address) []byte        { return s.code[addr] }
func (s *fakeStateDB) SetCode(addr types.Address, code []byte)  { s.code[addr] = code }
func (s *fakeStateDB) GetCodeHash(addr types.Address) types.Hash { return s.codeHash[addr] }
func (s *fakeStateDB) GetCodeSize(addr types.Address) int        { return len(s.code[addr]) }

func (s *fakeStateDB) GetState(addr types.Address, key types.Hash) types.Hash {
	if m, ok := s.storage[addr]; ok {
		return m[key]
	}
	return types.Hash{}
}

func (s *fakeStateDB) SetState(addr types.Address, key types.Hash, value types.Hash) {
	if s.storage[addr] == nil {
		s.storage[addr] = make(map[types.Hash]types.Hash)
	}
	if _, ok := s.committed[addr]; !ok {
		s.committed[addr] = make(map[types.Hash]types.Hash)
	}
	if _, ok := s.committed[addr][key]; !ok {
		// Lazily record original-at-start-of-transaction the first time
		// this slot is touched, matching spec.md §3's StorageSlot model.
		s.committed[addr][key] = s.storage[addr][key]
	}
	before := s.storage[addr][key]
	s.storage[addr][key] = value
	s.undo = append(s.undo, func() { s.storage[addr][key] = before })
}

func (s *fakeStateDB) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	if m, ok := s.committed[addr]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return types.Hash{}
}

func (s *fakeStateDB) GetTransientState(addr types.Address, key types.Hash) types.Hash {
	if m, ok := s.transient[addr]; ok {
		return m[key]
	}
	return types.Hash{}
}

func (s *fakeStateDB) SetTransientState(addr types.Address, key types.Hash, value types.Hash) {
	if s.transient[addr] == nil {
		s.transient[addr] = make(map[types.Hash]types.Hash)
	}
	s.transient[addr][key] = value
}

func (s *fakeStateDB) ClearTransientStorage() {
	s.transient = make(map[types.Address]map[types.Hash]types.Hash)
}

func (s *fakeStateDB) SelfDestruct(addr types.Address)        { s.destructed[addr] = true }
func (s *fakeStateDB) HasSelfDestructed(addr types.Address) bool { return s.destructed[addr] }

func (s *fakeStateDB) Exist(addr types.Address) bool {
	return s.exists[addr] || s.balances[addr] != nil || len(s.code[addr]) > 0 || s.nonces[addr] != 0
}

func (s *fakeStateDB) Empty(addr types.Address) bool {
	return s.GetBalance(addr).Sign() == 0 && s.nonces[addr] == 0 && len(s.code[addr]) == 0
}

func (s *fakeStateDB) Snapshot() int {
	return len(s.undo)
}

func (s *fakeStateDB) RevertToSnapshot(id int) {
	for i := len(s.undo) - 1; i >= id; i-- {
		s.undo[i]()
	}
	s.undo = s.undo[:id]
}

func (s *fakeStateDB) AddLog(log *types.Log) { s.logs = append(s.logs, log) }

func (s *fakeStateDB) AddRefund(gas uint64) { s.refund += gas }
func (s *fakeStateDB) SubRefund(gas uint64) {
	if gas > s.refund {
		s.refund = 0
		return
	}
	s.refund -= gas
}
func (s *fakeStateDB) GetRefund() uint64 { return s.refund }

func (s *fakeStateDB) AddAddressToAccessList(addr types.Address) { s.accessList.TouchAddress(addr) }
func (s *fakeStateDB) AddSlotToAccessList(addr types.Address, slot types.Hash) {
	s.accessList.TouchSlot(addr, slot)
}
func (s *fakeStateDB) AddressInAccessList(addr types.Address) bool {
	return s.accessList.ContainsAddress(addr)
}
func (s *fakeStateDB) SlotInAccessList(addr types.Address, slot types.Hash) (bool, bool) {
	return s.accessList.ContainsSlot(addr, slot)
}
