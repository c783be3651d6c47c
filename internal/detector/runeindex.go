// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import "sort"

// RuneIndex converts byte offsets produced by regexp matching into the
// character (rune) offsets carried by spans. Built once per document.
type RuneIndex struct {
	// Byte offset of each rune start, ascending. starts[i] is the byte
	// position of the i-th rune.
	starts []int
}

// NewRuneIndex builds the byte-to-rune offset map for text.
func NewRuneIndex(text string) *RuneIndex {
	starts := make([]int, 0, len(text))
	for i := range text {
		starts = append(starts, i)
	}
	return &RuneIndex{starts: starts}
}

// RuneOffset returns the rune offset for a byte offset. Byte offsets past
// the end of the text map to the total rune count.
func (ri *RuneIndex) RuneOffset(byteOff int) int {
	return sort.SearchInts(ri.starts, byteOff)
}
