// Copyright 2026 The gantry Authors
// This file is part of the gantry library.
//
// The gantry library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gantry library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gantry library. If not, see <http://www.gnu.org/licenses/>.

package stages

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SegmentKind names a class of immutable history segment files. Once a block
// range has been finalized its headers, transactions and receipts move out of
// the database into per-range segment files.
type SegmentKind string

const (
	SegmentHeaders      SegmentKind = "headers"
	SegmentTransactions SegmentKind = "transactions"
	SegmentReceipts     SegmentKind = "receipts"
)

const segmentExt = ".seg"

// segmentKindForStage maps a sync stage to the segment kind it populates.
// Stages without segment files map to the empty kind.
func segmentKindForStage(stage SyncStage) SegmentKind {
	switch stage {
	case Headers:
		return SegmentHeaders
	case Bodies:
		return SegmentTransactions
	case Execution:
		return SegmentReceipts
	}
	return ""
}

// SegmentFileName composes the file name of a segment covering the inclusive
// block range [first, last].
func SegmentFileName(kind SegmentKind, first, last uint64) string {
	return fmt.Sprintf("%s-%06d-%06d%s", kind, first, last, segmentExt)
}

// ParseSegmentFileName decodes a segment file name into its kind and
// inclusive block range. The boolean reports whether the name is a
// well-formed segment name of a known kind.
func ParseSegmentFileName(name string) (kind SegmentKind, first, last uint64, ok bool) {
	base, found := strings.CutSuffix(name, segmentExt)
	if !found {
		return "", 0, 0, false
	}
	parts := strings.Split(base, "-")
	if len(parts) != 3 {
		return "", 0, 0, false
	}
	switch SegmentKind(parts[0]) {
	case SegmentHeaders, SegmentTransactions, SegmentReceipts:
		kind = SegmentKind(parts[0])
	default:
		return "", 0, 0, false
	}
	first, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	last, err = strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return "", 0, 0, false
	}
	return kind, first, last, true
}

// DeleteSegmentsFrom removes every segment file of the given kind whose block
// range starts at or after the from block. Files of other kinds and files
// that do not parse as segment names are left alone. A missing directory
// counts as empty. The number of removed files is returned.
func DeleteSegmentsFrom(dir string, kind SegmentKind, from uint64) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var removed int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		k, first, _, ok := ParseSegmentFileName(entry.Name())
		if !ok || k != kind || first < from {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
