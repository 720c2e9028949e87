// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dcadata

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// forbidden holds the characters which can never appear in an archive name:
// the line feed would break the framing, the path separator would smuggle
// directories into a flat format.
const forbidden = "\n/"

// ErrNameNotUnicode is returned by Filename for names which are not valid
// UTF-8 text.
var ErrNameNotUnicode = errors.New("name is not valid UTF-8")

// FilenameCharError reports a forbidden character in a candidate archive
// name, along with its byte index.
type FilenameCharError struct {
	Char  rune
	Index int
}

func (e *FilenameCharError) Error() string {
	return fmt.Sprintf("forbidden character %q at index %d", e.Char, e.Index)
}

// Filename validates a platform filename for use as a DCA entry name,
// returning it unchanged on success.
func Filename(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", ErrNameNotUnicode
	}
	if i := strings.IndexAny(name, forbidden); i >= 0 {
		c, _ := utf8.DecodeRuneInString(name[i:])
		return "", &FilenameCharError{Char: c, Index: i}
	}
	return name, nil
}
