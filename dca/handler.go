// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dca

import "io"

// Entry describes one unit of content being fed to the encoder: the path it
// originated from (used in fault reports; its base name becomes the archive
// name), its exact length, and a reader over that many bytes.
type Entry struct {
	Path string
	Size uint64
	Data io.Reader
}

// Source supplies entries to Encode, one at a time, in archive order.
//
// Next invokes add at most once, with the next entry; the callback scoping
// lets the implementation open and close per-entry resources around the
// encoding of that one entry. more is false once the source is exhausted, in
// which case add was not called.
//
// Errors returned by add must be propagated unchanged. The source may also
// report faults of its own as *dcadata.EntryError (content unavailable) or
// *dcadata.NameError values, which an error policy can elect to skip; on
// a skip the source is simply asked for the next entry again.
type Source interface {
	Next(add func(Entry) error) (more bool, err error)
}

// Sink receives entries from Decode. data is a bounded cursor over exactly
// size payload bytes; reading past the bound behaves as a clean end of
// stream. The sink may consume as much or as little as it wants - the
// decoder repositions past the payload either way.
//
// A sink which cannot durably consume the entry should return
// a *dcadata.EntryError (any error which is not a stream fault or structural
// corruption is treated as one, so plain filesystem errors also work).
// Errors produced by reading data must be returned unchanged: they describe
// the archive stream itself and have to abort the decode.
type Sink interface {
	Entry(name string, size uint64, data io.Reader) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(name string, size uint64, data io.Reader) error

// Entry implements Sink.
func (f SinkFunc) Entry(name string, size uint64, data io.Reader) error {
	return f(name, size, data)
}

// ErrorHandler is the error policy consulted on recoverable faults.
//
// OnErr returns nil to resume the operation, or an error (typically err
// itself, though translation is permitted) to abort with it. Only per-entry
// and invalid-name faults are ever offered; stream faults and structural
// corruption abort unconditionally. Implementations must not retain err
// beyond the call.
type ErrorHandler interface {
	OnErr(err error) error
}
