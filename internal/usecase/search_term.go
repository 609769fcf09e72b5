package usecase

import (
	"regexp"
	"strings"
)

// maxSearchTermLength caps terms sent to the search endpoint, in runes
const maxSearchTermLength = 100

// Compiled regex patterns for search term cleanup
var (
	// Runs of any whitespace, including tabs and newlines pasted into the box
	searchSpacePattern = regexp.MustCompile(`\s+`)

	// EAN-8 up to GTIN-14
	barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

	// Spaces and dashes people type inside barcodes ("3017 6204 22003")
	barcodeSeparatorPattern = regexp.MustCompile(`[\s-]+`)

	// Punctuation left dangling at either end ("milk,", "- oats")
	danglingPunctuationPattern = regexp.MustCompile(`^[\s,;:\-]+|[\s,;:\-]+$`)
)

// NormalizeSearchTerm cleans a user supplied search term. Barcodes typed
// with separators are compacted to their digits. A term that cleans down to
// nothing returns "".
func NormalizeSearchTerm(term string) string {
	// Step 1: Normalize whitespace
	cleaned := strings.TrimSpace(searchSpacePattern.ReplaceAllString(term, " "))
	if cleaned == "" {
		return ""
	}

	// Step 2: Barcodes go through as bare digits
	if compact := barcodeSeparatorPattern.ReplaceAllString(cleaned, ""); barcodePattern.MatchString(compact) {
		return compact
	}

	// Step 3: Drop dangling punctuation
	cleaned = strings.TrimSpace(danglingPunctuationPattern.ReplaceAllString(cleaned, ""))

	// Step 4: Limit length, cutting at a word boundary when one is close
	if runes := []rune(cleaned); len(runes) > maxSearchTermLength {
		cleaned = string(runes[:maxSearchTermLength])
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > len(cleaned)/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	return cleaned
}
