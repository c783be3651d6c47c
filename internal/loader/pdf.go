// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// maxPDFPages bounds extraction work on very large documents.
const maxPDFPages = 50

// extractPDFText extracts text from a PDF using ledongthuc/pdf, processing
// pages in parallel and reassembling them in page order.
func extractPDFText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("error opening PDF %s: %w", filePath, err)
	}
	defer f.Close()

	pageCount := r.NumPage()
	if pageCount > maxPDFPages {
		pageCount = maxPDFPages
	}

	type pageResult struct {
		pageNum int
		text    string
	}

	results := make(chan pageResult, pageCount)
	var wg sync.WaitGroup
	for i := 1; i <= pageCount; i++ {
		wg.Add(1)
		go func(pageNum int) {
			defer wg.Done()
			page := r.Page(pageNum)
			if page.V.IsNull() {
				return
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				// A damaged page should not sink the document.
				return
			}
			results <- pageResult{pageNum: pageNum, text: text}
		}(i)
	}
	wg.Wait()
	close(results)

	pages := make([]pageResult, 0, pageCount)
	for res := range results {
		pages = append(pages, res)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].pageNum < pages[j].pageNum })

	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p.text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
