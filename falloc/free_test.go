// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import "testing"

func TestFreeNilIsNoop(t *testing.T) {
	a, _ := newArena(t, 4096)
	if err := a.Free(nil); err != nil {
		t.Fatal(err)
	}
}

func TestFreeRejectsDoubleFree(t *testing.T) {
	a, _ := newArena(t, 4096)
	p, err := a.Allocate(64)
	if err != nil || p == nil {
		t.Fatalf("Allocate(64): %v, %v", p, err)
	}
	if err := a.Free(p); err != nil {
		t.Fatal(err)
	}
	if err := a.Free(p); err == nil {
		t.Fatal("expected an error freeing an already-free fragment")
	}
}

func TestFreeRejectsForeignPointer(t *testing.T) {
	a, _ := newArena(t, 4096)
	foreign := make([]byte, 64)
	if err := a.Free(foreign); err == nil {
		t.Fatal("expected an error freeing a pointer outside the arena")
	}
}

// TestFreeCoalescesNoNeighbors covers the case where both address-order
// neighbors are used (or absent), so the freed fragment is simply rebinned
// on its own.
func TestFreeCoalescesNoNeighbors(t *testing.T) {
	a, _ := newArena(t, 4096)
	p, err := a.Allocate(64)
	if err != nil || p == nil {
		t.Fatalf("Allocate(64): %v, %v", p, err)
	}
	// A second allocation right after p keeps p's right neighbor used.
	if blocker, err := a.Allocate(64); err != nil || blocker == nil {
		t.Fatalf("Allocate(64): %v, %v", blocker, err)
	}
	before := a.diag.Allocated
	if err := a.Free(p); err != nil {
		t.Fatal(err)
	}
	if a.diag.Allocated != before-roundUpPow2(64+Alignment) {
		t.Fatalf("Allocated = %d after Free", a.diag.Allocated)
	}
	if err := a.CheckInvariants(); err != nil {
		t.Fatal(err)
	}
}

// TestFreeCoalescesBothNeighbors reproduces the split-then-three-way-merge
// scenario: three adjacent fragments are allocated out of one pristine
// fragment, the two outer ones are freed first, and freeing the middle
// one must trigger a join-left-and-right merge that folds everything back
// into a single free fragment as large as the original.
func TestFreeCoalescesBothNeighbors(t *testing.T) {
	a, _ := newArena(t, 4096)

	p1, err := a.Allocate(16)
	if err != nil || p1 == nil {
		t.Fatalf("Allocate(p1): %v, %v", p1, err)
	}
	p2, err := a.Allocate(16)
	if err != nil || p2 == nil {
		t.Fatalf("Allocate(p2): %v, %v", p2, err)
	}
	p3, err := a.Allocate(16)
	if err != nil || p3 == nil {
		t.Fatalf("Allocate(p3): %v, %v", p3, err)
	}

	if err := a.Free(p1); err != nil {
		t.Fatal(err)
	}
	if err := a.Free(p3); err != nil {
		t.Fatal(err)
	}
	if err := a.CheckInvariants(); err != nil {
		t.Fatal(err)
	}

	if err := a.Free(p2); err != nil {
		t.Fatal(err)
	}
	if a.diag.Allocated != 0 {
		t.Fatalf("Allocated = %d, want 0 once every fragment is free", a.diag.Allocated)
	}
	if err := a.CheckInvariants(); err != nil {
		t.Fatal(err)
	}

	// The arena must now be able to satisfy an allocation as large as
	// the one it started with, proving the three fragments coalesced
	// back into one contiguous free span rather than staying split.
	m := a.MaxAllocationSize()
	big, err := a.Allocate(m)
	if err != nil {
		t.Fatal(err)
	}
	if big == nil {
		t.Fatal("expected the coalesced fragment to satisfy a MaxAllocationSize() request")
	}
}
