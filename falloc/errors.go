// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package falloc

import "fmt"

// ErrINVAL reports an invalid argument passed to the API: a misaligned or
// undersized arena, a negative amount, a pointer that
// does not belong to the arena, etc. The caller is expected to fix the call
// site; the arena itself remains untouched.
type ErrINVAL struct {
	Src string
	Arg interface{}
}

func (e *ErrINVAL) Error() string {
	if e.Arg == nil {
		return e.Src
	}
	return fmt.Sprintf("%s: %#v", e.Src, e.Arg)
}

// ErrType classifies an ErrILSEQ.
type ErrType int

// ErrILSEQ reasons, named after the fragment invariant they describe.
// CheckInvariants reports ErrBinMismatch and ErrDiagnostics; no code in
// this package produces the other values.
const (
	ErrOther ErrType = iota
	ErrMisalignedBase
	ErrBadPointer
	ErrDoubleFree
	ErrUsedMismatch
	ErrBinMismatch
	ErrBinChaining
	ErrDiagnostics
	ErrAdjacentFree
)

var errTypeStr = map[ErrType]string{
	ErrOther:          "internal error",
	ErrMisalignedBase: "misaligned arena base",
	ErrBadPointer:     "pointer does not belong to the arena",
	ErrDoubleFree:     "fragment already free",
	ErrUsedMismatch:   "used flag mismatch between adjacent fragments",
	ErrBinMismatch:    "bin mask bit disagrees with bin head",
	ErrBinChaining:    "broken free list chain",
	ErrDiagnostics:    "diagnostics counters incoherent",
	ErrAdjacentFree:   "two free fragments left uncoalesced",
}

func (t ErrType) String() string {
	if s, ok := errTypeStr[t]; ok {
		return s
	}
	return fmt.Sprintf("ErrType(%d)", int(t))
}

// ErrILSEQ ("ill-formed sequence") reports that the arena's internal
// bookkeeping is no longer self-consistent: a bin mask bit that disagrees
// with its bin's head, or diagnostics counters that are out of bounds or
// incoherent. Only CheckInvariants returns it.
// Any occurrence means the caller violated the single-goroutine contract or
// wrote past the bounds of a fragment it was given; the arena must not be
// used again once this is observed.
type ErrILSEQ struct {
	Type ErrType
	Off  int
	Arg  int64
	Arg2 int64
	More error
}

func (e *ErrILSEQ) Error() string {
	s := fmt.Sprintf("falloc: %s at offset %#x", e.Type, e.Off)
	if e.Arg != 0 {
		s += fmt.Sprintf(", arg %#x", e.Arg)
	}
	if e.Arg2 != 0 {
		s += fmt.Sprintf(", arg2 %#x", e.Arg2)
	}
	if e.More != nil {
		s += ": " + e.More.Error()
	}
	return s
}
