// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package dcadata implements IO routines for reading and writing the pieces
// of the DCA format: the magic bytes, the line-framed entry segments, the
// filename rules, and the position-tracked reader which powers byte-exact
// corruption reports.
package dcadata
