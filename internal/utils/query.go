// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault parses s as a base-10 integer, tolerating surrounding
// whitespace. It returns def when s is empty, blank, or not an integer.
//
// It exists for optional numeric query parameters ("?limit=50"), where a
// missing or garbled value should fall back to the caller's default rather
// than fail the request.
func AtoiDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
