// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import "github.com/cznic/mathutil"

// Reallocate resizes the fragment backing p to hold newAmount bytes,
// preserving the first min(len(p), newAmount) bytes of content, and
// returns a slice over the (possibly relocated) fragment.
//
// Four strategies are tried in order, each strictly cheaper than the next:
//
//  1. Shrink or keep the same size: the fragment never moves; a
//     sufficiently large leftover is split off and returned to its bin.
//  2. Expand forward into a free right neighbor: the fragment never
//     moves.
//  3. Expand backward into a free left neighbor, also taking in the
//     right neighbor whenever it is free: content is moved toward lower addresses with a single
//     copy, since the destination and source regions never overlap
//     beyond what a forward copy handles safely.
//  4. Allocate a new fragment, copy, free the old one: the fallback of
//     last resort, taken only when neither neighbor offers enough room.
//
// Reallocate(nil, n) behaves exactly like Allocate(n). Reallocate(p, 0)
// behaves exactly like Free(p), returning (nil, nil).
func (a *Arena) Reallocate(p []byte, newAmount int) ([]byte, error) {
	if newAmount < 0 {
		return nil, &ErrINVAL{Src: "falloc.Reallocate: negative amount", Arg: newAmount}
	}
	if p == nil {
		return a.Allocate(newAmount)
	}
	if newAmount == 0 {
		return nil, a.Free(p)
	}

	a.diag.PeakRequestSize = mathutil.Max(a.diag.PeakRequestSize, newAmount)
	if newAmount > a.diag.Capacity-Alignment {
		a.diag.OOMCount++
		return nil, nil
	}

	frag, err := a.fragmentOf(p)
	if err != nil {
		return nil, err
	}
	fragSize := a.fragSize(frag)
	oldAmount := fragSize - Alignment
	newFragSize := roundUpPow2(newAmount + Alignment)

	prev, _ := a.readPrevUsed(frag)
	next := a.readNext(frag)
	prevFree := prev != 0 && !a.isUsed(prev)
	nextFree := next != 0 && !a.isUsed(next)
	var prevSize, nextSize int
	if prevFree {
		prevSize = a.fragSize(prev)
	}
	if nextFree {
		nextSize = a.fragSize(next)
	}

	// Path 1: shrink or same size, in place.
	if newFragSize <= fragSize {
		leftover := fragSize - newFragSize
		if leftover >= minFragmentSize {
			a.diag.Allocated -= leftover
			newFrag := frag + newFragSize
			a.writePrevUsed(newFrag, 0, false)
			a.interlink(frag, newFrag)
			if nextFree {
				a.unbin(next, nextSize)
				a.interlink(newFrag, a.readNext(next))
				a.rebin(newFrag, leftover+nextSize)
			} else {
				a.interlink(newFrag, next)
				a.rebin(newFrag, leftover)
			}
		}
		return a.base[frag+Alignment : frag+Alignment+newAmount : frag+a.fragSize(frag)], nil
	}

	// Path 2: expand forward into a free right neighbor.
	if nextFree && fragSize+nextSize >= newFragSize {
		a.unbin(next, nextSize)
		leftover := fragSize + nextSize - newFragSize
		if leftover >= minFragmentSize {
			newFrag := frag + newFragSize
			a.writePrevUsed(newFrag, 0, false)
			a.interlink(newFrag, a.readNext(next))
			a.interlink(frag, newFrag)
			a.rebin(newFrag, leftover)
			a.diag.Allocated += newFragSize - fragSize
		} else {
			a.interlink(frag, a.readNext(next))
			a.diag.Allocated += nextSize
		}
		a.diag.PeakAllocated = mathutil.Max(a.diag.PeakAllocated, a.diag.Allocated)
		return a.base[frag+Alignment : frag+Alignment+newAmount : frag+a.fragSize(frag)], nil
	}

	// Path 3: expand backward (and possibly forward) into a free left neighbor.
	// Content must move toward the lower address; copy forward before the old
	// header is overwritten, since destination <= source always holds here.
	if prevFree && prevSize+fragSize+nextSize >= newFragSize {
		a.unbin(prev, prevSize)
		if nextFree {
			a.unbin(next, nextSize)
		}
		out := prev + Alignment
		copy(a.base[out:out+oldAmount], a.base[frag+Alignment:frag+Alignment+oldAmount])
		a.setUsed(prev, true)
		leftover := prevSize + fragSize + nextSize - newFragSize
		if leftover >= minFragmentSize {
			newFrag := prev + newFragSize
			a.writePrevUsed(newFrag, 0, false)
			if nextFree {
				a.interlink(newFrag, a.readNext(next))
			} else {
				a.interlink(newFrag, next)
			}
			a.interlink(prev, newFrag)
			a.rebin(newFrag, leftover)
			a.diag.Allocated += newFragSize - fragSize
		} else {
			if nextFree {
				a.interlink(prev, a.readNext(next))
			} else {
				a.interlink(prev, next)
			}
			a.diag.Allocated += prevSize + nextSize
		}
		a.diag.PeakAllocated = mathutil.Max(a.diag.PeakAllocated, a.diag.Allocated)
		return a.base[out : out+newAmount : out+a.fragSize(prev)-Alignment], nil
	}

	// Path 4: allocate fresh, copy, free the old fragment.
	out, err := a.Allocate(newAmount)
	if err != nil {
		return nil, err
	}
	if out != nil {
		copy(out, a.base[frag+Alignment:frag+Alignment+oldAmount])
		if err := a.Free(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}
