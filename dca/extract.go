// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dca

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"go.chromium.org/luci/common/logging"

	"github.com/riannucci/dcarchive/dca/dcadata"
)

// Decode reads a DCA archive from r, handing every entry to sink in stream
// order.
//
// Structural corruption and stream faults abort immediately with no partial
// success return. A per-entry fault reported by the sink is offered to eh; on
// a resume decision the decoder repositions to the byte immediately following
// the entry's declared payload and carries on with the next entry, which is
// what keeps one bad entry from desynchronizing the rest of the stream. The
// reposition happens unconditionally after every sink call, so sinks which
// do not fully drain their payload view are also fine.
func Decode(r io.Reader, sink Sink, eh ErrorHandler) error {
	dr := dcadata.NewReader(r)
	if err := dcadata.ReadMagic(dr); err != nil {
		return err
	}
	for {
		name, ok, err := dr.ReadLine()
		if err != nil {
			return err
		}
		if !ok {
			// Clean end of stream after the last footer.
			return nil
		}
		size, err := dr.ReadSize()
		if err != nil {
			return err
		}
		if err := decodeEntry(dr, name, size, sink, eh); err != nil {
			return err
		}
	}
}

func decodeEntry(dr *dcadata.Reader, name string, size uint64, sink Sink, eh ErrorHandler) error {
	payload := dr.Payload(size)

	if err := sink.Entry(name, size, payload); err != nil {
		if dcadata.Fatal(err) {
			return err
		}
		var ee *dcadata.EntryError
		var ne *dcadata.NameError
		if !errors.As(err, &ee) && !errors.As(err, &ne) {
			err = &dcadata.EntryError{Path: name, Err: err}
		}
		if herr := eh.OnErr(err); herr != nil {
			return herr
		}
	}

	if err := payload.Discard(); err != nil {
		return err
	}

	ok, err := dr.MatchLiteral([]byte{'\n'})
	if err != nil {
		return err
	}
	if !ok {
		return &dcadata.CorruptionError{Position: dr.Position(), Section: dcadata.SectionFooter}
	}
	return nil
}

// DirSink is the content sink used by ExtractArchive: every entry becomes
// a file under a target directory. A partially written file is deleted
// before the fault is reported, so a skipped entry leaves nothing behind.
type DirSink struct {
	ctx context.Context
	dir string
}

// NewDirSink returns a DirSink writing into dir, logging through ctx.
func NewDirSink(ctx context.Context, dir string) *DirSink {
	return &DirSink{ctx: ctx, dir: dir}
}

// Entry implements Sink.
func (s *DirSink) Entry(name string, size uint64, data io.Reader) error {
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return &dcadata.EntryError{Path: path, Err: err}
	}

	_, err = io.Copy(f, data)
	if err == nil {
		if cerr := f.Close(); cerr != nil {
			err = &dcadata.EntryError{Path: path, Err: cerr}
		}
	} else {
		f.Close()
		if !dcadata.Fatal(err) {
			// Write side failed; the archive stream is still good.
			err = &dcadata.EntryError{Path: path, Err: err}
		}
	}

	if err != nil {
		s.remove(path)
		return err
	}
	return nil
}

func (s *DirSink) remove(path string) {
	if rerr := os.Remove(path); rerr != nil {
		logging.Errorf(s.ctx,
			"extraction of %q failed and the partial file could not be deleted: %s; please remove it manually",
			path, rerr)
	}
}

// SkipHandler is the error policy used by ExtractArchive: per-entry I/O
// faults are logged and skipped, everything else aborts.
type SkipHandler struct {
	ctx     context.Context
	archive string
}

// NewSkipHandler returns a SkipHandler logging through ctx; archive names the
// stream in log lines.
func NewSkipHandler(ctx context.Context, archive string) *SkipHandler {
	return &SkipHandler{ctx: ctx, archive: archive}
}

// OnErr implements ErrorHandler.
func (h *SkipHandler) OnErr(err error) error {
	var ee *dcadata.EntryError
	if !errors.As(err, &ee) {
		return err
	}
	logging.Errorf(h.ctx, "extraction of %q from archive %q failed: %s; skipping",
		ee.Path, h.archive, ee.Err)
	return nil
}

// ExtractArchive extracts the archive at archivePath into dir, skipping (and
// logging) entries which fail to extract. Structural corruption and stream
// faults abort the whole extraction: entries already extracted are kept, the
// entry being extracted is deleted.
func ExtractArchive(ctx context.Context, archivePath, dir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		err = &dcadata.StreamError{Err: err}
		logging.Errorf(ctx, "cannot open archive %q: %s", archivePath, err)
		return err
	}
	defer f.Close()

	if err := Decode(f, NewDirSink(ctx, dir), NewSkipHandler(ctx, archivePath)); err != nil {
		logging.Errorf(ctx, "extraction of archive %q failed: %s", archivePath, err)
		return err
	}
	return nil
}
