// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transform

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

// ErrEditConflict indicates that two edits target overlapping byte
// ranges and cannot be applied together.
var ErrEditConflict = errors.New("conflicting edits")

// Edit replaces the byte range [Start, End) of the original source with
// Text. Edits produced by one specialization run never overlap.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

// ApplyEdits applies a set of non-overlapping edits to source and
// returns the rewritten bytes. The input slice is not modified.
//
// Edits are applied in ascending Start order; order of the input slice
// does not matter. Returns ErrEditConflict if any two edits overlap or
// an edit exceeds the source bounds.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		out := make([]byte, len(source))
		copy(out, source)
		return out, nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var buf bytes.Buffer
	cursor := uint32(0)
	for _, e := range sorted {
		if e.End < e.Start || int(e.End) > len(source) {
			return nil, fmt.Errorf("edit [%d,%d) out of bounds: %w", e.Start, e.End, ErrEditConflict)
		}
		if e.Start < cursor {
			return nil, fmt.Errorf("edit [%d,%d) overlaps a prior edit: %w", e.Start, e.End, ErrEditConflict)
		}
		buf.Write(source[cursor:e.Start])
		buf.WriteString(e.Text)
		cursor = e.End
	}
	buf.Write(source[cursor:])

	return buf.Bytes(), nil
}

// applyEditsInRange renders the byte range [start, end) of source with
// the given edits applied. All edits must fall inside the range; this
// is guaranteed for edits collected from a subtree of that range.
func applyEditsInRange(source []byte, start, end uint32, edits []Edit) (string, error) {
	shifted := make([]Edit, len(edits))
	for i, e := range edits {
		shifted[i] = Edit{Start: e.Start - start, End: e.End - start, Text: e.Text}
	}
	out, err := ApplyEdits(source[start:end], shifted)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
