// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dcadata

import (
	"bytes"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"
)

func TestMagic(t *testing.T) {
	t.Parallel()

	Convey("Magic", t, func() {
		Convey("write", func() {
			buf := &bytes.Buffer{}
			So(WriteMagic(buf), ShouldBeNil)
			So(buf.Bytes(), ShouldResemble, []byte("DCA\n"))
		})

		Convey("read", func() {
			Convey("good", func() {
				r := NewReader(strings.NewReader("DCA\nrest of the archive"))
				So(ReadMagic(r), ShouldBeNil)
				So(r.Position(), ShouldEqual, 4)
			})

			Convey("bad prefix", func() {
				r := NewReader(strings.NewReader("DCAv2\n"))
				err := ReadMagic(r)
				So(err, ShouldResemble, &CorruptionError{Position: 0, Section: SectionHeader})
				So(err, ShouldErrLike, "bad header section at byte 0")
			})

			Convey("short read", func() {
				r := NewReader(strings.NewReader("DC"))
				So(ReadMagic(r), ShouldErrLike, io.ErrUnexpectedEOF)
			})

			Convey("empty stream", func() {
				r := NewReader(strings.NewReader(""))
				So(ReadMagic(r), ShouldErrLike, io.ErrUnexpectedEOF)
			})
		})
	})
}
