// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import "strings"

// Soundex returns the 4-character American Soundex code for text: the first
// letter followed by digit classes for subsequent consonants, with adjacent
// duplicate codes collapsed and vowels, H, W, and Y acting as separators.
// Non-alphabetic input encodes as "0000".
func Soundex(text string) string {
	var letters []byte
	for _, c := range strings.ToUpper(text) {
		if c >= 'A' && c <= 'Z' {
			letters = append(letters, byte(c))
		}
	}
	if len(letters) == 0 {
		return "0000"
	}

	var b strings.Builder
	b.Grow(4)
	b.WriteByte(letters[0])

	prevCode := soundexCode(letters[0])
	for _, c := range letters[1:] {
		if b.Len() >= 4 {
			break
		}
		code := soundexCode(c)
		if code != '0' && code != prevCode {
			b.WriteByte(code)
		}
		prevCode = code
	}

	result := b.String()
	for len(result) < 4 {
		result += "0"
	}
	return result
}

func soundexCode(c byte) byte {
	switch c {
	case 'B', 'F', 'P', 'V':
		return '1'
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return '2'
	case 'D', 'T':
		return '3'
	case 'L':
		return '4'
	case 'M', 'N':
		return '5'
	case 'R':
		return '6'
	default:
		return '0'
	}
}
