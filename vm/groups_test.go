package vm

import (
	"slices"
	"testing"

	"cellkit.dev/harness/chain"
)

func TestBuildGroups_Ordering(t *testing.T) {
	lockA := chain.Script{CodeHash: chain.Hash{0xa}, HashType: chain.HashTypeData1}
	lockB := chain.Script{CodeHash: chain.Hash{0xb}, HashType: chain.HashTypeData1}
	typX := chain.Script{CodeHash: chain.Hash{0xc}, HashType: chain.HashTypeType}
	typY := chain.Script{CodeHash: chain.Hash{0xd}, HashType: chain.HashTypeType}

	rtx := &ResolvedTx{
		Inputs: []ResolvedCell{
			{Output: chain.CellOutput{Lock: lockA}},
			{Output: chain.CellOutput{Lock: lockB, Type: &typX}},
			{Output: chain.CellOutput{Lock: lockA}},
		},
	}
	rtx.Tx.Outputs = []chain.OutputSlot{
		{Output: chain.CellOutput{Lock: lockB, Type: &typY}},
		{Output: chain.CellOutput{Lock: lockB, Type: &typX}},
	}

	groups, err := buildGroups(rtx)
	if err != nil {
		t.Fatalf("buildGroups: %v", err)
	}
	if len(groups) != 4 {
		t.Fatalf("groups=%d, want 4", len(groups))
	}
	want := []struct {
		typ     GroupType
		index   int
		code    byte
		inputs  []int
		outputs []int
	}{
		{LockGroup, 0, 0xa, []int{0, 2}, nil},
		{LockGroup, 1, 0xb, []int{1}, nil},
		{TypeGroup, 0, 0xc, []int{1}, []int{1}},
		{TypeGroup, 1, 0xd, nil, []int{0}},
	}
	for i, w := range want {
		g := groups[i]
		if g.typ != w.typ || g.index != w.index || g.script.CodeHash[0] != w.code {
			t.Fatalf("group %d = %s/%d/%x", i, g.typ, g.index, g.script.CodeHash[0])
		}
		if !slices.Equal(g.inputs, w.inputs) || !slices.Equal(g.outputs, w.outputs) {
			t.Fatalf("group %d inputs=%v outputs=%v", i, g.inputs, g.outputs)
		}
	}
}

func TestMeter_LimitAndOverflow(t *testing.T) {
	cancelled := false
	m := &meter{limit: 100, cancel: func() { cancelled = true }}
	if !m.add(100) {
		t.Fatal("charge up to the limit must hold")
	}
	if m.add(1) || !m.exceeded || !cancelled {
		t.Fatalf("exceeded=%v cancelled=%v", m.exceeded, cancelled)
	}

	m = &meter{limit: ^uint64(0), used: ^uint64(0) - 1}
	if m.add(5) {
		t.Fatal("wrapping charge must fail")
	}

	defer func() {
		if r := recover(); r != errCyclesExceeded {
			t.Fatalf("recover=%v", r)
		}
	}()
	(&meter{limit: 1}).charge(2)
}
