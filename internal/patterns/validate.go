// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import (
	"strconv"
	"strings"
	"unicode"
)

// ValidIPv4 reports whether s is four dot-separated octets in 0-255.
func ValidIPv4(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return false
	}
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// ocrDigit maps letters commonly produced by OCR for digits.
func ocrDigit(c rune) rune {
	switch c {
	case 'B':
		return '8'
	case 'O':
		return '0'
	case 'S':
		return '5'
	case 'Z':
		return '2'
	case 'I', 'l', '|':
		return '1'
	case 'g', 'G':
		return '9'
	default:
		return c
	}
}

// ValidSSN applies deliberately permissive SSN validation: partially masked
// forms with enough digits are accepted outright, then OCR-damaged letters
// are normalized to digits and the digit count must land on 8 or 9. Missing
// a real SSN costs more than flagging a near-miss.
func ValidSSN(s string) bool {
	var compact []rune
	for _, c := range s {
		if !unicode.IsSpace(c) {
			compact = append(compact, c)
		}
	}

	digitCount, maskCount := 0, 0
	for _, c := range compact {
		switch {
		case c >= '0' && c <= '9':
			digitCount++
		case c == '*' || c == 'X' || c == 'x':
			maskCount++
		}
	}
	if maskCount > 0 {
		return digitCount >= 3 && maskCount >= 2
	}

	normalized := 0
	for _, c := range s {
		d := ocrDigit(c)
		if d >= '0' && d <= '9' {
			normalized++
		}
	}
	return normalized >= 8 && normalized <= 9
}

// ValidPhone requires enough digits for a dialable number: ten total
// characters when letters participate (vanity numbers), seven digits
// otherwise.
func ValidPhone(s string) bool {
	digits, letters := 0, 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case unicode.IsLetter(c):
			letters++
		}
	}
	if letters > 0 {
		return digits+letters >= 10
	}
	return digits >= 7
}

// Luhn reports whether the digit string passes the Luhn mod-10 checksum.
// Non-digit characters are ignored.
func Luhn(s string) bool {
	var digits []int
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		}
	}
	if len(digits) == 0 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidCreditCard requires 13-16 digits passing Luhn.
func ValidCreditCard(s string) bool {
	count := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			count++
		}
	}
	return count >= 13 && count <= 16 && Luhn(s)
}

// ValidNPI checks the NPI check digit: Luhn over the number with the
// standard 80840 card-issuer prefix.
func ValidNPI(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return Luhn("80840" + s)
}

// ValidRecordID requires a record identifier to carry at least four digits,
// rejecting captures that are mostly punctuation or letters.
func ValidRecordID(s string) bool {
	digits := 0
	for _, c := range s {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 4
}

// ValidAge accepts ages 0-120.
func ValidAge(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 120
}

// ValidUSDate checks month and day ranges of a M/D/Y string.
func ValidUSDate(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return false
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return false
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return false
	}
	return true
}
