// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dcadata

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

// Reader layers the DCA framing primitives over a buffered stream while
// maintaining a byte-exact archive offset. The offset only ever advances,
// and only by bytes which were confirmed as consumed, so every fault can
// name the position it was detected at.
type Reader struct {
	br  *bufio.Reader
	pos uint64
}

// NewReader wraps r for framed reading starting at archive offset 0.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Position returns the archive offset of the next unconsumed byte.
func (r *Reader) Position() uint64 {
	return r.pos
}

// MatchLiteral reads exactly len(lit) bytes and compares them to lit. The
// offset advances only on a confirmed match. Failing to read the bytes at
// all is a stream fault, distinct from a mismatch.
func (r *Reader) MatchLiteral(lit []byte) (bool, error) {
	buf := make([]byte, len(lit))
	if _, err := io.ReadFull(r.br, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return false, &StreamError{Err: err}
	}
	if !bytes.Equal(buf, lit) {
		return false, nil
	}
	r.pos += uint64(len(lit))
	return true, nil
}

// ReadLine reads bytes up to and including the next line feed, returning the
// content without the delimiter. ok is false when the stream ended cleanly
// with zero bytes read; that is the normal end of an archive, not an error.
// A final line missing its delimiter is returned as-is.
func (r *Reader) ReadLine() (line string, ok bool, err error) {
	line, rerr := r.br.ReadString('\n')
	if rerr != nil && rerr != io.EOF {
		return "", false, &StreamError{Err: rerr}
	}
	if line == "" {
		return "", false, nil
	}
	r.pos += uint64(len(line))
	if line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	return line, true, nil
}

// ReadSize reads the file-size line. Clean end-of-stream where a size was
// required, or a line which does not parse as a non-negative decimal, is
// file-size corruption; a parse fault is reported at the offset where the
// line began.
func (r *Reader) ReadSize() (uint64, error) {
	start := r.pos
	line, ok, err := r.ReadLine()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &CorruptionError{Position: r.pos, Section: SectionFileSize}
	}
	size, perr := strconv.ParseUint(line, 10, 64)
	if perr != nil {
		return 0, &CorruptionError{Position: start, Section: SectionFileSize}
	}
	return size, nil
}

// Payload returns a bounded view over the next size payload bytes.
func (r *Reader) Payload(size uint64) *PayloadReader {
	return &PayloadReader{r: r, remaining: size}
}

// PayloadReader is the bounded cursor handed to content sinks during
// decoding. Reading past the declared payload size behaves as a clean end of
// stream, never as an error; the underlying stream running out before the
// declared count is reachable is payload corruption at the offset where the
// shortfall was detected.
type PayloadReader struct {
	r         *Reader
	remaining uint64
}

func (p *PayloadReader) Read(buf []byte) (int, error) {
	if p.remaining == 0 {
		return 0, io.EOF
	}
	if uint64(len(buf)) > p.remaining {
		buf = buf[:p.remaining]
	}
	n, err := p.r.br.Read(buf)
	p.r.pos += uint64(n)
	p.remaining -= uint64(n)
	switch {
	case err == io.EOF && p.remaining > 0:
		return n, &CorruptionError{Position: p.r.pos, Section: SectionPayload}
	case err == io.EOF:
		// The stream ended exactly at the bound; the footer check will have
		// its own say.
		return n, nil
	case err != nil:
		return n, &StreamError{Err: err}
	}
	return n, nil
}

// Discard consumes whatever the sink left unread, repositioning the stream to
// the first byte after the payload. Idempotent.
func (p *PayloadReader) Discard() error {
	_, err := io.Copy(io.Discard, p)
	return err
}
