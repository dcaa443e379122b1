// Package normalizer cleans raw scraped fields and decides whether a row
// describes a sellable book. All functions are pure.
package normalizer

import (
	"strings"
	"unicode/utf8"

	"bookmarket/internal/domain"
)

// Placeholder titles the scrapers emit when a site exposes no real title.
const (
	placeholderNoTitle = "Без названия"
	placeholderUnnamed = "Название не указано"
)

// minTitleLength is the minimum number of runes a real title has.
const minTitleLength = 2

// CleanText trims the text and collapses internal whitespace runs to single
// spaces. Empty, "nan" and "None" inputs (artifacts of the CSV exports) map
// to the empty string.
func CleanText(text string) string {
	if text == "" || strings.EqualFold(text, "nan") || text == "None" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// IsValidRecord reports whether the record describes a sellable book:
// a real title of at least two runes and a positive price.
func IsValidRecord(r domain.Record) bool {
	title := CleanText(r.Title)

	if title == "" || title == placeholderNoTitle || title == placeholderUnnamed {
		return false
	}
	if r.Price <= 0 {
		return false
	}
	if utf8.RuneCountInString(title) < minTitleLength {
		return false
	}
	return true
}

// Normalize returns a copy of the record with its text fields cleaned.
// Price, URL and website are carried through untouched.
func Normalize(r domain.Record) domain.Record {
	r.Title = CleanText(r.Title)
	r.Author = CleanText(r.Author)
	r.ISBN = CleanText(r.ISBN)
	return r
}
