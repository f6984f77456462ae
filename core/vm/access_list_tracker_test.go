package vm

import (
	"testing"

	"github.com/0xys/evmstar/core/types"
)

func TestAccessListTrackerPrePopulate(t *testing.T) {
	alt := NewAccessListTracker()
	sender := types.Address{0xaa}
	to := types.Address{0xbb}
	al := types.AccessList{
		{Address: types.Address{0xcc}, StorageKeys: []types.Hash{{0x01}}},
	}
	alt.PrePopulate(sender, &to, al)

	if !alt.ContainsAddress(sender) {
		t.Fatal("sender must be pre-warmed")
	}
	if !alt.ContainsAddress(to) {
		t.Fatal("recipient must be pre-warmed")
	}
	if !alt.ContainsAddress(types.BytesToAddress([]byte{0x01})) {
		t.Fatal("precompile 0x01 must always be warm")
	}
	addrWarm, slotWarm := alt.ContainsSlot(types.Address{0xcc}, types.Hash{0x01})
	if !addrWarm || !slotWarm {
		t.Fatal("access-list tuple must be pre-warmed")
	}
}

// First touch of a cold address/slot is Cold (charges the cold surcharge);
// subsequent touches within the same transaction are Warm.
func TestAccessListTrackerFirstTouchIsCold(t *testing.T) {
	alt := NewAccessListTracker()
	addr := types.Address{0x01}

	wasWarm := alt.TouchAddress(addr)
	if wasWarm {
		t.Fatal("first touch of an untouched address must report Cold (false)")
	}
	wasWarm = alt.TouchAddress(addr)
	if !wasWarm {
		t.Fatal("second touch of the same address must report Warm (true)")
	}
}

func TestAccessListTrackerGasCost(t *testing.T) {
	alt := NewAccessListTracker()
	addr := types.Address{0x01}

	if got := alt.AddressGasCost(addr); got != ColdAccountAccessCost-WarmStorageReadCost {
		t.Fatalf("cold AddressGasCost = %d, want %d", got, ColdAccountAccessCost-WarmStorageReadCost)
	}
	if got := alt.AddressGasCost(addr); got != 0 {
		t.Fatalf("warm AddressGasCost = %d, want 0", got)
	}
}

// P4: a reverted snapshot restores Cold status bit-exactly.
func TestAccessListTrackerSnapshotRevertRestoresCold(t *testing.T) {
	alt := NewAccessListTracker()
	sender := types.Address{0x01}
	alt.PrePopulate(sender, nil, nil)

	snap := alt.Snapshot()
	touched := types.Address{0x02}
	alt.TouchAddress(touched)
	slotAddr := types.Address{0x03}
	alt.TouchSlot(slotAddr, types.Hash{0x07})

	if !alt.ContainsAddress(touched) {
		t.Fatal("touched address should be warm before revert")
	}

	alt.RevertToSnapshot(snap)

	if alt.ContainsAddress(touched) {
		t.Fatal("touched address must be Cold again after revert")
	}
	addrWarm, slotWarm := alt.ContainsSlot(slotAddr, types.Hash{0x07})
	if addrWarm || slotWarm {
		t.Fatal("touched slot must be Cold again after revert")
	}
	// Pre-populated entries must survive any revert.
	if !alt.ContainsAddress(sender) {
		t.Fatal("pre-populated sender must survive a revert")
	}
}

func TestAccessListTrackerNestedSnapshots(t *testing.T) {
	alt := NewAccessListTracker()
	outer := alt.Snapshot()
	a := types.Address{0x01}
	alt.TouchAddress(a)

	inner := alt.Snapshot()
	b := types.Address{0x02}
	alt.TouchAddress(b)

	alt.RevertToSnapshot(inner)
	if alt.ContainsAddress(b) {
		t.Fatal("inner-snapshot address must be reverted")
	}
	if !alt.ContainsAddress(a) {
		t.Fatal("outer-snapshot address must survive an inner revert")
	}

	alt.RevertToSnapshot(outer)
	if alt.ContainsAddress(a) {
		t.Fatal("outer revert must undo the address touched after it")
	}
}

func TestAccessListTrackerCopyIsIndependent(t *testing.T) {
	alt := NewAccessListTracker()
	alt.TouchAddress(types.Address{0x01})
	cpy := alt.Copy()
	cpy.TouchAddress(types.Address{0x02})

	if alt.ContainsAddress(types.Address{0x02}) {
		t.Fatal("mutating the copy must not affect the original")
	}
	if !cpy.ContainsAddress(types.Address{0x01}) {
		t.Fatal("the copy must retain entries from before it was made")
	}
}
