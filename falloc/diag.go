// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

// Diagnostics is a snapshot of an Arena's bookkeeping counters, useful for
// telemetry and for the invariant checks in CheckInvariants.
type Diagnostics struct {
	// Capacity is the total usable pool size, fixed for the Arena's
	// lifetime.
	Capacity int

	// Allocated is the sum of the sizes of all fragments currently
	// handed out, including their headers.
	Allocated int

	// PeakAllocated is the highest value Allocated has ever reached.
	PeakAllocated int

	// PeakRequestSize is the largest amount ever passed to Allocate or
	// Reallocate, including requests that were rejected for lack of
	// space.
	PeakRequestSize int

	// OOMCount counts allocation and reallocation requests that could
	// not be satisfied.
	OOMCount uint64
}

// Diagnostics returns a snapshot of the arena's current bookkeeping
// counters.
func (a *Arena) Diagnostics() Diagnostics { return a.diag }

// InvariantsHold reports whether CheckInvariants finds no corruption. It
// exists alongside the richer error-returning form for callers that only
// need a boolean, e.g. a periodic health check.
func (a *Arena) InvariantsHold() bool { return a.CheckInvariants() == nil }

// CheckInvariants checks that every bin's mask bit agrees with whether the
// bin has a head fragment, and that the diagnostics counters are within
// bounds, multiples of the minimum fragment size and coherent with each
// other. It reads no fragment header and does not walk the
// address-ordered fragment chain, which would cost time proportional to
// the number of live fragments; the checks below are the ones that can be
// performed in bounded time.
func (a *Arena) CheckInvariants() error {
	for i := 0; i < numBins; i++ {
		maskSet := a.binMask&(1<<uint(i)) != 0
		binNonEmpty := a.bins[i] != 0
		if maskSet != binNonEmpty {
			return &ErrILSEQ{Type: ErrBinMismatch, Off: a.bins[i], Arg: int64(i)}
		}
	}

	d := a.diag

	if d.Capacity < minFragmentSize || d.capacityOverflows() || d.Capacity%minFragmentSize != 0 {
		return &ErrILSEQ{Type: ErrDiagnostics, Arg: int64(d.Capacity)}
	}
	if d.Allocated > d.Capacity || d.Allocated%minFragmentSize != 0 ||
		d.PeakAllocated > d.Capacity || d.PeakAllocated < d.Allocated || d.PeakAllocated%minFragmentSize != 0 {
		return &ErrILSEQ{Type: ErrDiagnostics, Arg: int64(d.Allocated), Arg2: int64(d.PeakAllocated)}
	}

	if !(d.PeakRequestSize < d.Capacity || d.OOMCount > 0) {
		return &ErrILSEQ{Type: ErrDiagnostics, Arg: int64(d.PeakRequestSize)}
	}
	if d.PeakRequestSize == 0 {
		if d.PeakAllocated != 0 || d.Allocated != 0 || d.OOMCount != 0 {
			return &ErrILSEQ{Type: ErrDiagnostics}
		}
	} else if !(d.PeakRequestSize+Alignment <= d.PeakAllocated || d.OOMCount > 0) {
		return &ErrILSEQ{Type: ErrDiagnostics, Arg: int64(d.PeakRequestSize), Arg2: int64(d.PeakAllocated)}
	}

	return nil
}

func (d Diagnostics) capacityOverflows() bool { return uint64(d.Capacity) > maxFragmentSize }
