// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import "unsafe"

const (
	ptrBytes = int(unsafe.Sizeof(uintptr(0)))
	wordBits = ptrBytes * 8

	// Alignment is the byte alignment every returned pointer and every
	// internal fragment boundary is guaranteed to satisfy. It equals
	// twice the platform pointer width, matching the footprint of a
	// fragment header.
	Alignment = ptrBytes * 2

	minFragmentSize = Alignment * 2
	numBins         = wordBits

	diagWords = 5 // Capacity, Allocated, PeakAllocated, PeakRequestSize, OOMCount

	rawInstanceSize    = numBins*ptrBytes + ptrBytes /* bin mask */ + ptrBytes /* arenaEnd */ + diagWords*ptrBytes
	paddedInstanceSize = (rawInstanceSize + Alignment - 1) &^ (Alignment - 1)

	// MinArenaSize is the smallest backing slice New will accept: room
	// for the bookkeeping overhead plus a single minimum-size fragment.
	MinArenaSize = paddedInstanceSize + minFragmentSize
)

// maxFragmentSize is the largest power-of-two fragment size representable:
// half the address space. Kept unsigned since 1<<(wordBits-1) overflows a
// signed word on 64-bit platforms.
const maxFragmentSize uint64 = 1 << (wordBits - 1)

// Arena is a constant-time dynamic memory allocator bound to a single
// caller-supplied backing slice. The zero Arena is not usable; construct
// one with New.
type Arena struct {
	base []byte // caller-owned backing store, including reserved bookkeeping prefix

	poolOff  int // offset of the first fragment, == paddedInstanceSize
	arenaEnd int // offset one past the last usable byte

	bins    [numBins]int // bins[i] is the offset of the bin's head fragment, 0 if empty
	binMask uint64       // bit i set iff bins[i] != 0

	diag Diagnostics
}

// New constructs an Arena over base. The full capacity of base, minus a
// fixed bookkeeping overhead of paddedInstanceSize bytes and minus whatever
// remainder is needed to keep the pool a multiple of the minimum fragment
// size, becomes available for allocation.
//
// base must be non-empty, aligned to Alignment, and at least MinArenaSize
// bytes long, or New returns an *ErrINVAL.
func New(base []byte) (*Arena, error) {
	if len(base) == 0 {
		return nil, &ErrINVAL{Src: "falloc.New: nil or empty base"}
	}
	if uintptr(unsafe.Pointer(&base[0]))%uintptr(Alignment) != 0 {
		return nil, &ErrINVAL{Src: "falloc.New: base not aligned", Arg: Alignment}
	}
	if len(base) < MinArenaSize {
		return nil, &ErrINVAL{Src: "falloc.New: base shorter than MinArenaSize", Arg: len(base)}
	}

	capacity := len(base) - paddedInstanceSize
	if uint64(capacity) > maxFragmentSize {
		capacity = int(maxFragmentSize - 1)
	}
	capacity -= capacity % minFragmentSize

	a := &Arena{
		base:     base,
		poolOff:  paddedInstanceSize,
		arenaEnd: paddedInstanceSize + capacity,
	}
	a.diag.Capacity = capacity

	a.writeNext(a.poolOff, 0)
	a.writePrevUsed(a.poolOff, 0, false)
	a.rebin(a.poolOff, capacity)

	return a, nil
}

// MaxAllocationSize returns the largest amount accepted by Allocate or
// Reallocate, given the arena's total capacity. It is constant for the
// lifetime of the arena; fragmentation never lowers it below the value
// obtainable on a pristine arena of the same capacity, since it reflects
// the largest fragment the arena could ever produce, not the largest free
// fragment currently available.
func (a *Arena) MaxAllocationSize() int {
	if a.diag.Capacity < minFragmentSize {
		return 0
	}
	largest := pow2(log2Floor(a.diag.Capacity))
	return largest - Alignment
}

func pow2(n int) int { return 1 << uint(n) }

// log2Floor returns floor(log2(x)) for x >= 1.
func log2Floor(x int) int { return bitLen(x) - 1 }

// roundUpPow2 returns the smallest power of two >= x, for x >= 1.
func roundUpPow2(x int) int { return 1 << uint(bitLen(x-1)) }
