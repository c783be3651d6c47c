// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package patterns provides the built-in PHI pattern corpus. The scanner
// takes any []detector.PatternDef; this corpus is the default an external
// loader can replace or extend.
package patterns

import (
	"regexp"

	"github.com/DocHatty/vulpes-celare/internal/detector"
)

// Category labels assigned by the default corpus.
const (
	CategoryEmail      = "EMAIL"
	CategoryIP         = "IP"
	CategoryURL        = "URL"
	CategorySSN        = "SSN"
	CategoryPhone      = "PHONE"
	CategoryNPI        = "NPI"
	CategoryZip        = "ZIP"
	CategoryMRN        = "MRN"
	CategoryDate       = "DATE"
	CategoryAge        = "AGE"
	CategoryCreditCard = "CREDIT_CARD"
	CategoryName       = "NAME"
)

// DefaultCorpus returns the built-in clinical pattern set. Pattern IDs are
// stable identifiers carried on spans; the "labeled" / "explicit" suffixes
// are meaningful to the confidence pipeline's span enhancer.
func DefaultCorpus() []detector.PatternDef {
	return []detector.PatternDef{
		{
			ID:         "email",
			Category:   CategoryEmail,
			Regex:      regexp.MustCompile(`(?i)\b[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`),
			Confidence: 0.95,
		},
		{
			ID:         "ipv4",
			Category:   CategoryIP,
			Regex:      regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			Confidence: 0.95,
			Validator:  func(m string, _ []string) bool { return ValidIPv4(m) },
		},
		{
			ID:         "url-scheme",
			Category:   CategoryURL,
			Regex:      regexp.MustCompile(`(?i)\bhttps?://[^\s<>"]+`),
			Confidence: 0.90,
		},
		{
			ID:         "url-www",
			Category:   CategoryURL,
			Regex:      regexp.MustCompile(`(?i)\bwww\.[a-z0-9.-]+\.[a-z]{2,}[^\s<>"]*`),
			Confidence: 0.85,
		},
		{
			ID:         "ssn-dashed",
			Category:   CategorySSN,
			Regex:      regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			Confidence: 0.92,
			Validator:  func(m string, _ []string) bool { return ValidSSN(m) },
		},
		{
			ID:         "ssn-spaced",
			Category:   CategorySSN,
			Regex:      regexp.MustCompile(`\b\d{3}[ \t]\d{2}[ \t]\d{4}\b`),
			Confidence: 0.85,
			Validator:  func(m string, _ []string) bool { return ValidSSN(m) },
		},
		{
			// Partially masked SSNs must still be flagged for redaction.
			ID:         "ssn-masked",
			Category:   CategorySSN,
			Regex:      regexp.MustCompile(`[*Xx]{3}-[*Xx]{2}-\d{4}\b`),
			Confidence: 0.90,
			Validator:  func(m string, _ []string) bool { return ValidSSN(m) },
		},
		{
			ID:         "ssn-labeled",
			Category:   CategorySSN,
			Regex:      regexp.MustCompile(`(?i)\bSSN\s*[:#]?\s*(\d{3}[- ]?\d{2}[- ]?\d{4})\b`),
			Confidence: 0.97,
			Validator:  func(m string, _ []string) bool { return ValidSSN(m) },
		},
		{
			ID:         "phone-paren",
			Category:   CategoryPhone,
			Regex:      regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}\b`),
			Confidence: 0.90,
			Validator:  func(m string, _ []string) bool { return ValidPhone(m) },
		},
		{
			ID:         "phone-dashed",
			Category:   CategoryPhone,
			Regex:      regexp.MustCompile(`\b\d{3}[-.]\d{3}[-.]\d{4}\b`),
			Confidence: 0.85,
			Validator:  func(m string, _ []string) bool { return ValidPhone(m) },
		},
		{
			ID:         "phone-labeled",
			Category:   CategoryPhone,
			Regex:      regexp.MustCompile(`(?i)\b(?:phone|tel|cell|mobile|fax)\s*[:#]?\s*(\+?1?[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4})\b`),
			Confidence: 0.95,
			Validator:  func(m string, _ []string) bool { return ValidPhone(m) },
		},
		{
			ID:         "npi-labeled",
			Category:   CategoryNPI,
			Regex:      regexp.MustCompile(`(?i)\bNPI(?:\s+(?:Number|No|#))?\s*[#:]*\s*(\d{10})\b`),
			Confidence: 0.95,
			Validator: func(_ string, groups []string) bool {
				return len(groups) > 0 && ValidNPI(groups[0])
			},
		},
		{
			ID:         "zip-plus4",
			Category:   CategoryZip,
			Regex:      regexp.MustCompile(`\b\d{5}-\d{4}\b`),
			Confidence: 0.70,
		},
		{
			ID:         "zip-labeled",
			Category:   CategoryZip,
			Regex:      regexp.MustCompile(`(?i)\b(?:zip|zip code|zipcode)\s*[:#]?\s*(\d{5})\b`),
			Confidence: 0.90,
		},
		{
			ID:         "mrn-labeled",
			Category:   CategoryMRN,
			Regex:      regexp.MustCompile(`(?i)\b(?:MRN|medical record(?: number)?)\s*[:#]*\s*([A-Z0-9-]{5,12})\b`),
			Confidence: 0.95,
			Validator: func(_ string, groups []string) bool {
				return len(groups) > 0 && ValidRecordID(groups[0])
			},
		},
		{
			ID:         "mrn-prefixed",
			Category:   CategoryMRN,
			Regex:      regexp.MustCompile(`\bMR[-#]?\d{6,10}\b`),
			Confidence: 0.85,
		},
		{
			ID:         "date-iso",
			Category:   CategoryDate,
			Regex:      regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
			Confidence: 0.85,
		},
		{
			ID:         "date-us",
			Category:   CategoryDate,
			Regex:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
			Confidence: 0.80,
			Validator:  func(m string, _ []string) bool { return ValidUSDate(m) },
		},
		{
			ID:         "date-long",
			Category:   CategoryDate,
			Regex:      regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}\b`),
			Confidence: 0.85,
		},
		{
			ID:         "age-explicit",
			Category:   CategoryAge,
			Regex:      regexp.MustCompile(`(?i)\b(\d{1,3})[- ]years?[- ]old\b`),
			Confidence: 0.85,
			Validator: func(_ string, groups []string) bool {
				return len(groups) > 0 && ValidAge(groups[0])
			},
		},
		{
			ID:         "age-labeled",
			Category:   CategoryAge,
			Regex:      regexp.MustCompile(`(?i)\bage\s*[:#]?\s*(\d{1,3})\b`),
			Confidence: 0.80,
			Validator: func(_ string, groups []string) bool {
				return len(groups) > 0 && ValidAge(groups[0])
			},
		},
		{
			ID:         "credit-card",
			Category:   CategoryCreditCard,
			Regex:      regexp.MustCompile(`\b(?:4\d{3}|5[1-5]\d{2}|3[47]\d{2}|6011)[- ]?\d{4}[- ]?\d{4}[- ]?\d{1,4}\b`),
			Confidence: 0.85,
			Validator:  func(m string, _ []string) bool { return ValidCreditCard(m) },
		},
	}
}
