// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dcadata

import "io"

// Magic is the magic bytes which appear at the beginning of a DCA archive.
// There is no version byte; the format is frozen.
const Magic = "DCA\n"

// WriteMagic writes the DCA magic to the writer.
func WriteMagic(w io.Writer) error {
	_, err := w.Write([]byte(Magic))
	return err
}

// ReadMagic consumes the magic from r. A stream which begins with anything
// else is header corruption; failing to read 4 bytes at all is a stream
// fault.
func ReadMagic(r *Reader) error {
	ok, err := r.MatchLiteral([]byte(Magic))
	if err != nil {
		return err
	}
	if !ok {
		return &CorruptionError{Position: r.Position(), Section: SectionHeader}
	}
	return nil
}
