// Copyright 2017 Robert Iannucci Jr. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dca

import (
	"io"
	"sort"
)

// EntryInfo is one entry's metadata, as reported by Entries.
type EntryInfo struct {
	Name string
	Size uint64
}

// SortOrder defines the ordering of a listing.
type SortOrder int

const (
	// Unsorted keeps entries in stream order.
	Unsorted SortOrder = iota
	// ByName sorts lexicographically by entry name.
	ByName
	// BySize sorts by payload size, largest first.
	BySize
)

// Entries decodes only the metadata of every entry in the archive, leaving
// payloads unread, and returns it in the requested order.
//
// The format permits duplicate names; entries comparing equal keep no
// particular relative order.
func Entries(r io.Reader, order SortOrder, eh ErrorHandler) ([]EntryInfo, error) {
	var infos []EntryInfo
	err := Decode(r, SinkFunc(func(name string, size uint64, data io.Reader) error {
		infos = append(infos, EntryInfo{Name: name, Size: size})
		return nil
	}), eh)
	if err != nil {
		return nil, err
	}
	SortEntries(infos, order)
	return infos, nil
}

// SortEntries sorts a listing in place.
func SortEntries(infos []EntryInfo, order SortOrder) {
	switch order {
	case ByName:
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	case BySize:
		sort.Slice(infos, func(i, j int) bool { return infos[i].Size > infos[j].Size })
	}
}
