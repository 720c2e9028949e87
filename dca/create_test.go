// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dca

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"

	"github.com/riannucci/dcarchive/dca/dcadata"
)

// pairSource feeds Encode a fixed list of in-memory entries.
type pairSource struct {
	pairs []pair
}

type pair struct {
	name string
	data []byte
}

func (s *pairSource) Next(add func(Entry) error) (bool, error) {
	if len(s.pairs) == 0 {
		return false, nil
	}
	p := s.pairs[0]
	s.pairs = s.pairs[1:]
	return true, add(Entry{
		Path: p.name,
		Size: uint64(len(p.data)),
		Data: bytes.NewReader(p.data),
	})
}

// abortAll is the strictest possible policy: every offered fault aborts.
type abortAll struct{}

func (abortAll) OnErr(err error) error { return err }

// skipEntryFaults resumes on per-entry faults and records what it saw.
type skipEntryFaults struct {
	seen []error
}

func (h *skipEntryFaults) OnErr(err error) error {
	h.seen = append(h.seen, err)
	var ee *dcadata.EntryError
	if errors.As(err, &ee) {
		return nil
	}
	return err
}

func writeFile(dir, name string, data []byte) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0666); err != nil {
		panic(err)
	}
	return path
}

func TestEncode(t *testing.T) {
	t.Parallel()

	Convey("Encode", t, func() {
		out := &bytes.Buffer{}

		Convey("no entries gives the bare magic", func() {
			So(Encode(out, NewFileSource(), abortAll{}), ShouldBeNil)
			So(out.Bytes(), ShouldResemble, []byte("DCA\n"))
		})

		Convey("single file", func() {
			dir := t.TempDir()
			path := writeFile(dir, "test", []byte("Hello world!"))

			So(Encode(out, NewFileSource(path), abortAll{}), ShouldBeNil)
			So(out.Bytes(), ShouldResemble, []byte("DCA\ntest\n12\nHello world!\n"))
		})

		Convey("many files, binary and empty and large", func() {
			dir := t.TempDir()
			large := bytes.Repeat([]byte{0xDE}, 1024*1024)
			empty := writeFile(dir, "empty", nil)
			largeF := writeFile(dir, "large", large)
			binary := writeFile(dir, "binary", []byte("\x00\xFF314\x10\x10"))
			text := writeFile(dir, "text", []byte("dumb\ncat\narchive\n"))

			So(Encode(out, NewFileSource(empty, largeF, binary, text), abortAll{}), ShouldBeNil)

			expect := &bytes.Buffer{}
			expect.WriteString("DCA\nempty\n0\n\n")
			expect.WriteString("large\n1048576\n")
			expect.Write(large)
			expect.WriteString("\n")
			expect.WriteString("binary\n7\n\x00\xFF314\x10\x10\n")
			expect.WriteString("text\n17\ndumb\ncat\narchive\n\n")
			So(out.Bytes(), ShouldResemble, expect.Bytes())
		})

		Convey("in-memory source", func() {
			src := &pairSource{pairs: []pair{
				{"foo", []byte("foo")},
				{"bar", []byte("bar")},
			}}
			So(Encode(out, src, abortAll{}), ShouldBeNil)
			So(out.Bytes(), ShouldResemble, []byte("DCA\nfoo\n3\nfoo\nbar\n3\nbar\n"))
		})

		Convey("missing file is a per-entry fault", func() {
			missing := filepath.Join(t.TempDir(), "nonexisting")
			err := Encode(out, NewFileSource(missing), abortAll{})

			var ee *dcadata.EntryError
			So(errors.As(err, &ee), ShouldBeTrue)
			So(ee.Path, ShouldEqual, missing)
			So(errors.Is(ee.Err, fs.ErrNotExist), ShouldBeTrue)
		})

		Convey("illegal name is rejected before any frame bytes", func() {
			src := &pairSource{pairs: []pair{{"a\nb", []byte("data")}}}
			err := Encode(out, src, abortAll{})

			var ne *dcadata.NameError
			So(errors.As(err, &ne), ShouldBeTrue)
			So(ne.Path, ShouldEqual, "a\nb")
			So(err, ShouldErrLike, `forbidden character '\n' at index 1`)
			So(out.Bytes(), ShouldResemble, []byte("DCA\n"))
		})

		Convey("policy may skip a bad entry", func() {
			dir := t.TempDir()
			good := writeFile(dir, "file", []byte("data"))
			missing := filepath.Join(dir, "nonexistent")

			handler := &skipEntryFaults{}
			So(Encode(out, NewFileSource(good, missing), handler), ShouldBeNil)
			So(out.Bytes(), ShouldResemble, []byte("DCA\nfile\n4\ndata\n"))
			So(handler.seen, ShouldHaveLength, 1)
		})

		Convey("a reader running dry mid-frame keeps the framing intact", func() {
			// The first entry declares more bytes than its reader holds.
			declared := &declaredSource{entries: []Entry{
				{Path: "liar", Size: 5, Data: bytes.NewReader([]byte("ab"))},
				{Path: "ok", Size: 2, Data: bytes.NewReader([]byte("ok"))},
			}}

			handler := &skipEntryFaults{}
			So(Encode(out, declared, handler), ShouldBeNil)
			So(out.Bytes(), ShouldResemble, []byte("DCA\nliar\n5\nab\x00\x00\x00\nok\n2\nok\n"))
			So(handler.seen, ShouldHaveLength, 1)
		})
	})
}

// declaredSource hands out pre-built entries verbatim, declared sizes and
// all, so tests can make an entry lie about its length.
type declaredSource struct {
	entries []Entry
}

func (s *declaredSource) Next(add func(Entry) error) (bool, error) {
	if len(s.entries) == 0 {
		return false, nil
	}
	e := s.entries[0]
	s.entries = s.entries[1:]
	return true, add(e)
}

func TestCreateArchive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	Convey("CreateArchive", t, func() {
		dir := t.TempDir()

		Convey("writes the archive", func() {
			notes := writeFile(dir, "notes.txt", []byte("my\nnotes"))
			dump := writeFile(dir, "dump.bin", []byte("\x12\x34\x56\x00\x00"))
			empty := writeFile(dir, "empty", nil)
			arch := filepath.Join(dir, "archive.dca")

			So(CreateArchive(ctx, arch, notes, dump, empty), ShouldBeNil)

			data, err := os.ReadFile(arch)
			So(err, ShouldBeNil)
			So(data, ShouldResemble,
				[]byte("DCA\nnotes.txt\n8\nmy\nnotes\ndump.bin\n5\n\x12\x34\x56\x00\x00\nempty\n0\n\n"))
		})

		Convey("deletes the partial archive on failure", func() {
			arch := filepath.Join(dir, "archive.dca")
			err := CreateArchive(ctx, arch, filepath.Join(dir, "nonexisting"))

			var ee *dcadata.EntryError
			So(errors.As(err, &ee), ShouldBeTrue)

			_, serr := os.Stat(arch)
			So(errors.Is(serr, fs.ErrNotExist), ShouldBeTrue)
		})
	})
}
