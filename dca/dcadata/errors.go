// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dcadata

import (
	"errors"
	"fmt"
)

// Section identifies which segment of the archive grammar the decoder was
// processing when it found structural corruption.
type Section int

// The sections of an archive, in stream order.
const (
	SectionHeader Section = iota
	SectionFileName
	SectionFileSize
	SectionPayload
	SectionFooter
)

func (s Section) String() string {
	switch s {
	case SectionHeader:
		return "header"
	case SectionFileName:
		return "filename"
	case SectionFileSize:
		return "file-size"
	case SectionPayload:
		return "payload"
	case SectionFooter:
		return "footer"
	}
	return fmt.Sprintf("Section(%d)", int(s))
}

// StreamError indicates that the archive-level stream itself failed to read
// or write. It is always fatal; once the stream misbehaves no further frame
// can be trusted (or, on the write side, meaningfully emitted).
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("archive stream: %s", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// CorruptionError indicates that a framing invariant was violated at
// a specific byte offset. It is always fatal; the archive is malformed or
// truncated.
type CorruptionError struct {
	Position uint64
	Section  Section
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("corrupted archive: bad %s section at byte %d", e.Section, e.Position)
}

// EntryError indicates that one entry's content could not be produced or
// consumed (missing file, permissions, full disk). The archive framing itself
// remains trustworthy, so an error policy may elect to skip the entry.
type EntryError struct {
	Path string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %q: %s", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// NameError indicates that a candidate entry's name cannot be represented in
// the flat text framing. Recoverable by policy, like EntryError.
type NameError struct {
	Path string
	Err  error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("entry %q has an illegal archive name: %s", e.Path, e.Err)
}

func (e *NameError) Unwrap() error { return e.Err }

// Fatal reports whether err belongs to the fault classes which must abort the
// whole operation (stream faults and structural corruption). Such errors are
// never offered to an error policy.
func Fatal(err error) bool {
	var se *StreamError
	var ce *CorruptionError
	return errors.As(err, &se) || errors.As(err, &ce)
}
