// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dcarchive implements the 'dumb cat archive' (DCA) format, a flat
// text-framed container which concatenates multiple files into one stream.
// Unlike ZIP or XAR there is no table of contents, no compression and no
// checksum; the format is designed so that a human with `cat` and a pocket
// calculator can take an archive apart.
//
// It has a fairly basic format:
//   * magic header ("DCA\n")
//   * zero or more entries, each:
//       * filename + "\n"
//       * payload size in decimal ASCII + "\n"
//       * exactly `size` raw payload bytes (no escaping)
//       * a single "\n" footer
//
// End of archive is simply end of stream after the last entry's footer; there
// is no explicit terminator record.
//
// Filenames are UTF-8 and may not contain '\n' or '/' (the format is flat, so
// directories cannot be represented). Multiple entries with the same name are
// technically permitted; there is no additional metadata to disambiguate them.
//
// The interesting part of the package is the streaming engine in dca: the
// decoder is a line-oriented state machine which reports corruption with
// byte-exact stream offsets, and both directions are parameterized by
// pluggable content and error-policy handlers so that callers decide, per
// failure class, whether a bad entry aborts the whole operation or is skipped.
package dcarchive
