// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import (
	"flag"
	"math/rand"
	"sort"
	"testing"

	"github.com/cznic/sortutil"
)

var (
	rndTestN        = flag.Int("n", 256, "random allocator test: number of blocks kept alive per pass")
	rndTestSeed     = flag.Int64("seed", 42, "random allocator test: PRNG seed")
	rndTestCapacity = flag.Int("cap", 1<<20, "random allocator test: arena capacity in bytes")
)

// TestAllocatorRandomized drives an Arena through repeated passes of
// allocate, verify content, free a third at random, resize the rest at
// random and verify again, exercising every
// reallocation path along the way, then frees everything and checks the
// arena returns to a pristine, fully-coalesced state. CheckInvariants runs
// after every mutating call, so the first internal inconsistency fails
// the test at the call that introduced it.
func TestAllocatorRandomized(t *testing.T) {
	n := *rndTestN
	a, _ := newArena(t, *rndTestCapacity)
	rng := rand.New(rand.NewSource(*rndTestSeed))

	// ref keys blocks by a stable integer handle, independent of the
	// slice's current address, since Reallocate may relocate the block.
	ref := map[int64][]byte{}
	var nextKey int64

	maxReq := a.MaxAllocationSize() / 4
	if maxReq < 1 {
		maxReq = 1
	}

	alloc := func(amount int) []byte {
		p, err := a.Allocate(amount)
		if err != nil {
			t.Fatalf("Allocate(%d): %v", amount, err)
		}
		if err := a.CheckInvariants(); err != nil {
			t.Fatalf("Allocate(%d) broke invariants: %v", amount, err)
		}
		return p
	}

	for pass := 0; pass < 3; pass++ {
		// A) allocate n blocks, fill with identifiable content
		keys := make([]int64, 0, n)
		for i := 0; i < n; i++ {
			amount := 1 + rng.Intn(maxReq)
			p := alloc(amount)
			if p == nil {
				continue
			}
			k := nextKey
			nextKey++
			fill(p, byte(k))
			ref[k] = p
			keys = append(keys, k)
		}
		sort.Sort(sortutil.Int64Slice(keys))

		// B) verify content survived untouched
		for _, k := range keys {
			p := ref[k]
			for i, c := range p {
				if c != byte(k)+byte(i) {
					t.Fatalf("pass %d: block %d corrupted at byte %d", pass, k, i)
				}
			}
		}

		// C) free about a third of the blocks, at random
		for _, k := range keys {
			if rng.Intn(3) != 0 {
				continue
			}
			if err := a.Free(ref[k]); err != nil {
				t.Fatalf("Free: %v", err)
			}
			if err := a.CheckInvariants(); err != nil {
				t.Fatalf("Free broke invariants: %v", err)
			}
			delete(ref, k)
		}

		// D) reallocate everything still alive to a new random size
		for k, p := range ref {
			amount := 1 + rng.Intn(maxReq)
			q, err := a.Reallocate(p, amount)
			if err != nil {
				t.Fatalf("Reallocate: %v", err)
			}
			if err := a.CheckInvariants(); err != nil {
				t.Fatalf("Reallocate broke invariants: %v", err)
			}
			if q == nil {
				// Out of memory is an acceptable outcome; the
				// original block is still valid and owned by ref[k].
				continue
			}
			fill(q, byte(k))
			ref[k] = q
		}

		// E) verify content again, then free everything from this pass
		for k, p := range ref {
			for i, c := range p {
				if c != byte(k)+byte(i) {
					t.Fatalf("pass %d: block %d corrupted after reallocate at byte %d", pass, k, i)
				}
			}
			if err := a.Free(p); err != nil {
				t.Fatalf("Free: %v", err)
			}
			if err := a.CheckInvariants(); err != nil {
				t.Fatalf("Free broke invariants: %v", err)
			}
			delete(ref, k)
		}
	}

	if a.diag.Allocated != 0 {
		t.Fatalf("Allocated = %d after freeing everything, want 0", a.diag.Allocated)
	}
	// A fully drained arena must coalesce back down to a single bin.
	nonEmpty := 0
	for i := 0; i < numBins; i++ {
		if a.bins[i] != 0 {
			nonEmpty++
		}
	}
	if nonEmpty != 1 {
		t.Fatalf("%d non-empty bins remain after draining the arena, want 1", nonEmpty)
	}
}
