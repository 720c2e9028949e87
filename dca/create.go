// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dca

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/luci/common/iotools"
	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/dcarchive/dca/dcadata"
)

const copyBufSize = 32 * 1024

// partialFrameError marks a per-entry fault raised after some of the entry's
// frame bytes were already written; remaining counts the declared payload
// bytes not yet emitted.
type partialFrameError struct {
	err       error
	remaining uint64
}

func (p *partialFrameError) Error() string { return p.err.Error() }
func (p *partialFrameError) Unwrap() error { return p.err }

// Encode writes a complete DCA archive to w: the magic, then one frame per
// entry produced by src, in source order.
//
// Failures writing to w itself are unconditionally fatal and returned as
// *dcadata.StreamError without consulting eh; the output is presumed to be in
// an unrecoverable partial state. Per-entry and invalid-name faults from the
// source are offered to eh, and a nil decision skips that entry. If the
// fault arrived after frame bytes were already written, the encoder emits the
// undelivered payload bytes as zeros and closes the frame, so a skipped
// entry never leaves the stream with a truncated, unparseable frame.
func Encode(w io.Writer, src Source, eh ErrorHandler) error {
	if err := dcadata.WriteMagic(w); err != nil {
		return &dcadata.StreamError{Err: err}
	}
	for {
		more, err := src.Next(func(e Entry) error {
			return encodeEntry(w, e)
		})
		if err != nil {
			var pf *partialFrameError
			if errors.As(err, &pf) {
				err = pf.err
			}
			if dcadata.Fatal(err) {
				return err
			}
			if herr := eh.OnErr(err); herr != nil {
				return herr
			}
			if pf != nil {
				if err := closeFrame(w, pf.remaining); err != nil {
					return err
				}
			}
			continue
		}
		if !more {
			return nil
		}
	}
}

func encodeEntry(w io.Writer, e Entry) error {
	name, err := dcadata.Filename(filepath.Base(e.Path))
	if err != nil {
		return &dcadata.NameError{Path: e.Path, Err: err}
	}
	if _, err := fmt.Fprintf(w, "%s\n%d\n", name, e.Size); err != nil {
		return &dcadata.StreamError{Err: err}
	}
	if err := copyPayload(w, e); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return &dcadata.StreamError{Err: err}
	}
	return nil
}

// copyPayload streams exactly e.Size bytes from the entry's reader into w.
// A reader which errors or runs dry early is a per-entry fault, flagged with
// the count of bytes the frame still owes.
func copyPayload(w io.Writer, e Entry) error {
	buf := make([]byte, copyBufSize)
	remaining := e.Size
	for remaining > 0 {
		n := uint64(len(buf))
		if remaining < n {
			n = remaining
		}
		rn, rerr := e.Data.Read(buf[:n])
		if rn > 0 {
			if _, werr := w.Write(buf[:rn]); werr != nil {
				return &dcadata.StreamError{Err: werr}
			}
			remaining -= uint64(rn)
		}
		if rerr != nil {
			if rerr == io.EOF {
				if remaining == 0 {
					break
				}
				rerr = io.ErrUnexpectedEOF
			}
			return &partialFrameError{
				err:       &dcadata.EntryError{Path: e.Path, Err: rerr},
				remaining: remaining,
			}
		}
	}
	return nil
}

// closeFrame pads a half-written frame out to its declared size with zero
// bytes and appends the footer.
func closeFrame(w io.Writer, remaining uint64) error {
	zeros := make([]byte, copyBufSize)
	for remaining > 0 {
		n := uint64(len(zeros))
		if remaining < n {
			n = remaining
		}
		if _, err := w.Write(zeros[:n]); err != nil {
			return &dcadata.StreamError{Err: err}
		}
		remaining -= n
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return &dcadata.StreamError{Err: err}
	}
	return nil
}

// FileSource feeds Encode an ordered list of filesystem paths, opening and
// measuring each file lazily when the encoder asks for it. Each file is
// closed before Next returns.
type FileSource struct {
	paths []string
}

// NewFileSource returns a FileSource over the given paths.
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{paths: paths}
}

// Next implements Source.
func (s *FileSource) Next(add func(Entry) error) (bool, error) {
	if len(s.paths) == 0 {
		return false, nil
	}
	path := s.paths[0]
	s.paths = s.paths[1:]

	f, err := os.Open(path)
	if err != nil {
		return true, &dcadata.EntryError{Path: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return true, &dcadata.EntryError{Path: path, Err: err}
	}

	return true, add(Entry{
		Path: path,
		Size: uint64(st.Size()),
		Data: f,
	})
}

// AbortHandler is the error policy used by CreateArchive: every offered
// fault aborts the encode, after being logged.
type AbortHandler struct {
	ctx     context.Context
	archive string
}

// NewAbortHandler returns an AbortHandler logging through ctx; archive names
// the output in log lines.
func NewAbortHandler(ctx context.Context, archive string) *AbortHandler {
	return &AbortHandler{ctx: ctx, archive: archive}
}

// OnErr implements ErrorHandler.
func (h *AbortHandler) OnErr(err error) error {
	logging.Errorf(h.ctx, "cannot add entry to archive %q: %s", h.archive, err)
	return err
}

// CreateArchive encodes the given files, in order, into a new archive at
// archivePath (missing directories are not created). The first fault of any
// kind aborts, and the partially written archive is deleted - best effort;
// a failed deletion is logged but not escalated.
func CreateArchive(ctx context.Context, archivePath string, files ...string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		err = &dcadata.StreamError{Err: err}
		logging.Errorf(ctx, "cannot create archive %q: %s", archivePath, err)
		return err
	}

	bw := bufio.NewWriter(f)
	cw := &iotools.CountingWriter{Writer: bw}

	err = Encode(cw, NewFileSource(files...), NewAbortHandler(ctx, archivePath))
	if err == nil {
		ferr := bw.Flush()
		if cerr := f.Close(); ferr == nil {
			ferr = cerr
		}
		if ferr != nil {
			err = &dcadata.StreamError{Err: ferr}
		}
	} else {
		f.Close()
	}

	if err != nil {
		logging.Errorf(ctx, "creation of archive %q failed: %s", archivePath, err)
		if rerr := os.Remove(archivePath); rerr != nil {
			logging.Errorf(ctx,
				"removal of incorrectly created archive %q failed: %s; please remove it manually",
				archivePath, rerr)
		}
		return err
	}

	logging.Infof(ctx, "wrote archive %q (%d bytes)", archivePath, cw.Count)
	return nil
}
