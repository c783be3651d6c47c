// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package patterns

import "testing"

func TestValidIPv4(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"192.168.1.1", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"256.1.1.1", false},
		{"999.999.999.999", false},
		{"1.2.3", false},
		{"1.2.3.4.5", false},
		{"a.b.c.d", false},
	}
	for _, tt := range tests {
		if got := ValidIPv4(tt.input); got != tt.expected {
			t.Errorf("ValidIPv4(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidSSN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"standard dashed", "123-45-6789", true},
		{"spaced", "123 45 6789", true},
		{"contiguous", "123456789", true},
		{"eight digits accepted", "123-45-678", true},
		{"too few digits", "123-45", false},
		{"too many digits", "1234-56-78901", false},
		{"masked star", "***-**-6789", true},
		{"masked x", "XXX-XX-1234", true},
		{"masked too few digits", "***-**-67", false},
		{"single mask char", "12*-45-6789", false},
		{"ocr damaged", "I23-4S-678O", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSSN(tt.input); got != tt.expected {
				t.Errorf("ValidSSN(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidPhone(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"(555) 123-4567", true},
		{"555-123-4567", true},
		{"555-1234", true},
		{"555-12", false},
		{"1-800-FLOWERS", true},
		{"800-FLO", false},
	}
	for _, tt := range tests {
		if got := ValidPhone(tt.input); got != tt.expected {
			t.Errorf("ValidPhone(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLuhn(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"4532015112830366", true},
		{"4532-0151-1283-0366", true},
		{"4532015112830367", false},
		{"0", true},
		{"", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if got := Luhn(tt.input); got != tt.expected {
			t.Errorf("Luhn(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidCreditCard(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid visa", "4532015112830366", true},
		{"valid visa dashed", "4532-0151-1283-0366", true},
		{"checksum failure", "4532015112830367", false},
		{"too short", "4532-0151", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCreditCard(tt.input); got != tt.expected {
				t.Errorf("ValidCreditCard(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidNPI(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"valid check digit", "1234567893", true},
		{"bad check digit", "1234567890", false},
		{"too short", "123456789", false},
		{"too long", "12345678931", false},
		{"non-digit", "123456789x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidNPI(tt.input); got != tt.expected {
				t.Errorf("ValidNPI(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidRecordID(t *testing.T) {
	if !ValidRecordID("MR-123456") {
		t.Error("expected MR-123456 to validate")
	}
	if ValidRecordID("ABC-12") {
		t.Error("expected ABC-12 to fail: fewer than four digits")
	}
}

func TestValidAge(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"0", true},
		{"45", true},
		{"120", true},
		{"121", false},
		{"-1", false},
		{"abc", false},
	}
	for _, tt := range tests {
		if got := ValidAge(tt.input); got != tt.expected {
			t.Errorf("ValidAge(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestValidUSDate(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"12/31/2020", true},
		{"1/1/99", true},
		{"13/1/2020", false},
		{"12/32/2020", false},
		{"0/15/2020", false},
		{"12/2020", false},
	}
	for _, tt := range tests {
		if got := ValidUSDate(tt.input); got != tt.expected {
			t.Errorf("ValidUSDate(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDefaultCorpus_CompilesAndIsStable(t *testing.T) {
	corpus := DefaultCorpus()
	if len(corpus) == 0 {
		t.Fatal("default corpus is empty")
	}

	seen := make(map[string]bool)
	for _, p := range corpus {
		if p.ID == "" || p.Category == "" || p.Regex == nil {
			t.Errorf("pattern %q incomplete", p.ID)
		}
		if p.Confidence <= 0 || p.Confidence > 1 {
			t.Errorf("pattern %q confidence out of range: %v", p.ID, p.Confidence)
		}
		if seen[p.ID] {
			t.Errorf("duplicate pattern id %q", p.ID)
		}
		seen[p.ID] = true
	}
}
