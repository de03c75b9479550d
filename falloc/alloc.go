// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import "github.com/cznic/mathutil"

// Allocate reserves a fragment able to hold amount bytes and returns a
// slice over it, with len == amount and cap equal to the fragment's usable
// payload size (so a later Reallocate that only shrinks, or grows within
// that spare capacity, can be satisfied in place).
//
// Allocate runs in O(1): bin selection is a mask-and-scan over the
// non-empty-bin bitmask, never a walk of the free list or the fragment
// chain. If amount is 0, Allocate returns (nil, nil) without touching the
// arena. If amount exceeds MaxAllocationSize, or no free fragment is large
// enough, Allocate returns (nil, nil) too: running out of memory is not an
// error condition here, it is an expected outcome the caller must check
// for, same as the C original this package is a port of.
func (a *Arena) Allocate(amount int) ([]byte, error) {
	if amount < 0 {
		return nil, &ErrINVAL{Src: "falloc.Allocate: negative amount", Arg: amount}
	}

	var out []byte

	if amount > 0 && amount <= a.diag.Capacity-Alignment {
		allocSize := roundUpPow2(amount + Alignment)

		if idx, ok := a.findSmallestAdequateBin(allocSize); ok {
			frag := a.bins[idx]
			fragSize := a.fragSize(frag)
			a.unbin(frag, fragSize)

			leftover := fragSize - allocSize
			if leftover >= minFragmentSize {
				newFrag := frag + allocSize
				a.writePrevUsed(newFrag, 0, false)
				a.interlink(newFrag, a.readNext(frag))
				a.interlink(frag, newFrag)
				a.rebin(newFrag, leftover)
			}

			a.diag.Allocated += allocSize
			a.diag.PeakAllocated = mathutil.Max(a.diag.PeakAllocated, a.diag.Allocated)

			a.setUsed(frag, true)
			payload := frag + Alignment
			out = a.base[payload : payload+amount : payload+a.fragSize(frag)-Alignment]
		}
	}

	a.diag.PeakRequestSize = mathutil.Max(a.diag.PeakRequestSize, amount)
	if out == nil && amount > 0 {
		a.diag.OOMCount++
	}

	return out, nil
}
