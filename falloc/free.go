// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import "unsafe"

// Free releases a fragment previously returned by Allocate or Reallocate,
// coalescing it with a free left and/or right neighbor if one exists. A
// nil pointer is a no-op, matching the C convention this package mirrors.
//
// Free does not validate that p was actually obtained from this Arena
// beyond checking that it falls within the arena's bounds and is aligned;
// freeing an already-free fragment is reported as an ErrINVAL, a
// best-effort catch of the double-free case, same as the fragment-chain
// assertions in the original allocator.
func (a *Arena) Free(p []byte) error {
	if p == nil {
		return nil
	}

	frag, err := a.fragmentOf(p)
	if err != nil {
		return err
	}
	if !a.isUsed(frag) {
		return &ErrINVAL{Src: "falloc.Free: attempt to free a free fragment", Arg: frag}
	}

	fragSize := a.fragSize(frag)
	a.setUsed(frag, false)
	a.diag.Allocated -= fragSize

	prev, _ := a.readPrevUsed(frag)
	next := a.readNext(frag)
	joinLeft := prev != 0 && !a.isUsed(prev)
	joinRight := next != 0 && !a.isUsed(next)

	switch {
	case joinLeft && joinRight:
		prevSize := a.fragSize(prev)
		nextSize := a.fragSize(next)
		a.unbin(prev, prevSize)
		a.unbin(next, nextSize)
		a.interlink(prev, a.readNext(next))
		a.rebin(prev, prevSize+fragSize+nextSize)
	case joinLeft:
		prevSize := a.fragSize(prev)
		a.unbin(prev, prevSize)
		a.interlink(prev, next)
		a.rebin(prev, prevSize+fragSize)
	case joinRight:
		nextSize := a.fragSize(next)
		a.unbin(next, nextSize)
		a.interlink(frag, a.readNext(next))
		a.rebin(frag, fragSize+nextSize)
	default:
		a.rebin(frag, fragSize)
	}

	return nil
}

// fragmentOf recovers the offset of the fragment header backing payload
// slice p, validating that p actually points inside this arena's pool.
func (a *Arena) fragmentOf(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, &ErrINVAL{Src: "falloc: pointer has zero length", Arg: p}
	}
	base := uintptr(unsafe.Pointer(&a.base[0]))
	ptr := uintptr(unsafe.Pointer(&p[0]))
	if ptr < base+uintptr(a.poolOff) || ptr >= base+uintptr(a.arenaEnd) {
		return 0, &ErrINVAL{Src: "falloc: pointer out of arena bounds"}
	}
	off := int(ptr - base)
	if off%Alignment != 0 {
		return 0, &ErrINVAL{Src: "falloc: pointer not aligned to a fragment boundary", Arg: off}
	}
	return off - Alignment, nil
}
