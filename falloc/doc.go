// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*

Package falloc implements a deterministic, constant-time dynamic memory
allocator over a single caller-supplied contiguous byte arena.

Unlike the general-purpose heap, every operation (Allocate, Free,
Reallocate) completes in a bounded number of steps regardless of how
fragmented the arena is or how many fragments it currently holds. This is
achieved with the classic segregated-free-list design: free fragments are
sorted into bins by power-of-two size class, a bitmask records which bins
are non-empty, and popping the smallest adequate bin is a single bit-scan
away, never a walk of a list or a chain.

The allocator never calls into the runtime's own allocator, never starts a
goroutine, and never touches any memory outside the arena it was handed.
It is meant to be embedded in a hard-real-time or safety-critical path
where the ordinary garbage-collected heap, with its unpredictable pause
times, has to be avoided once the arena is primed.

Usage

A typical embedding looks like this:

	arena := make([]byte, 1<<20)
	a, err := falloc.New(arena)
	if err != nil {
		log.Fatal(err)
	}

	p, err := a.Allocate(256)
	if err != nil {
		log.Fatal(err)
	}
	if p == nil {
		// out of memory: handled by the caller, not by falloc
	}

	p, err = a.Reallocate(p, 512)
	...
	if err := a.Free(p); err != nil {
		log.Fatal(err)
	}

Pointers

There is no pointer type distinct from the arena itself: Allocate and
Reallocate return a []byte that reslices the caller's original arena
slice, and Free/Reallocate recover the fragment's identity from the
address of that slice's first byte. Passing a slice that does not
originate from this Arena, or one whose backing array has since been
reallocated by append, is undefined behavior and is caught on a
best-effort basis as an ErrINVAL or ErrILSEQ.

Concurrency

An Arena is not safe for concurrent use by multiple goroutines, including
calls that only read diagnostics. The caller owns serialization; this
mirrors the allocator's target environment, where a single control loop
owns the arena for its entire lifetime.

Failure modes

Running out of memory is not reported as an error: Allocate and
Reallocate return a nil slice, which the caller is expected to check for,
exactly like the C library this package is a port of. A non-nil error
return from any method instead signals a violation of the API contract
(a bad argument, including a double free, reported as an ErrINVAL) or an
incoherence of the allocator's bin table or counters detected by
CheckInvariants (an ErrILSEQ); neither should occur in
a correct program, and either means the Arena must not be used again.

*/
package falloc
