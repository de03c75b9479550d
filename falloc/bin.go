// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import "github.com/cznic/mathutil"

// bitLen wraps mathutil.BitLen, the bit-length primitive this allocator
// relies on for every size-class computation. cznic/memory uses the same
// function the same way: log := uint(mathutil.BitLen(roundup(size, a)-1)).
func bitLen(x int) int { return mathutil.BitLen(x) }

// binIndex maps a fragment size to the index of the bin that holds it.
// Bin i holds free fragments whose size falls in
// [minFragmentSize*2^i, minFragmentSize*2^(i+1)).
func binIndex(size int) int {
	return log2Floor(size / minFragmentSize)
}

// rebin adds the free fragment at off (of the given size) to the front of
// its bin's list; the most recently freed fragment of a given class is
// handed out first, which is kind to the cache.
func (a *Arena) rebin(off, size int) {
	idx := binIndex(size)
	head := a.bins[idx]
	a.writeFreeLinks(off, head, 0)
	if head != 0 {
		a.setFreePrev(head, off)
	}
	a.bins[idx] = off
	a.binMask |= 1 << uint(idx)
}

// unbin removes the free fragment at off (known to be filed under the bin
// for the given size) from its free list.
func (a *Arena) unbin(off, size int) {
	idx := binIndex(size)
	next, prev := a.readFreeLinks(off)
	if next != 0 {
		a.setFreePrev(next, prev)
	}
	if prev != 0 {
		a.setFreeNext(prev, next)
	}
	if a.bins[idx] == off {
		a.bins[idx] = next
		if a.bins[idx] == 0 {
			a.binMask &^= 1 << uint(idx)
		}
	}
}

func (a *Arena) setFreeNext(off, next int) {
	_, prev := a.readFreeLinks(off)
	a.writeFreeLinks(off, next, prev)
}

func (a *Arena) setFreePrev(off, prev int) {
	next, _ := a.readFreeLinks(off)
	a.writeFreeLinks(off, next, prev)
}

// findSmallestAdequateBin returns the index of the smallest non-empty bin
// guaranteed to hold a fragment of at least minSize bytes, and whether one
// exists. A mask-and-shift computes the set of candidate bins, and
// isolating its lowest set bit picks the smallest one, all in constant
// time regardless of fragmentation.
func (a *Arena) findSmallestAdequateBin(minSize int) (int, bool) {
	idx := binIndex(minSize)
	if idx >= numBins {
		return 0, false
	}
	candidates := a.binMask &^ ((uint64(1) << uint(idx)) - 1)
	if candidates == 0 {
		return 0, false
	}
	lowest := candidates & (-candidates)
	return bitLen(int(lowest)) - 1, true
}
