// Package query turns free-form search text into a title and an optional
// release year.
package query

import (
	"strconv"
	"strings"
)

const (
	minYear = 1900
	maxYear = 2025
)

// Parse splits text on whitespace and treats the last token as the release
// year when it is an integer in [1900, 2025]. Any other trailing token is
// part of the title: "Apollo 13" and "Ocean's 11" stay intact, so a failed
// year parse is a fallback, not an error. Year is "" when unset.
func Parse(text string) (title, year string) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return text, ""
	}

	last := parts[len(parts)-1]
	y, err := strconv.Atoi(last)
	if err != nil || y < minYear || y > maxYear {
		return text, ""
	}

	return strings.Join(parts[:len(parts)-1], " "), last
}
