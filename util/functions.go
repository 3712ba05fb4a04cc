package util

import (
	"strings"
	. "unicode"
)

func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func Max(a, b int) int {
	if a < b {
		return b
	}
	return a
}

func Min(a, b int) int {
	if a > b {
		return b
	}
	return a
}

// Prefix returns the first n runes of s.
func Prefix(s string, n int) string {
	runes := []rune(s)
	return string(runes[0:Min(len(runes), n)])
}

// Suffix returns the last n runes of s.
func Suffix(s string, n int) string {
	runes := []rune(s)
	return string(runes[Max(len(runes)-n, 0):])
}

// Shape maps a word to its orthographic shape: upper case letters become X,
// lower case x, digits d; other runes are kept. Runs longer than four of the
// same class are truncated, so "Stefflon" is "Xxxxx" and "2007" is "dddd".
func Shape(s string) string {
	var (
		b    strings.Builder
		last rune
		run  int
	)
	for _, r := range s {
		var c rune
		switch {
		case IsUpper(r):
			c = 'X'
		case IsLetter(r):
			c = 'x'
		case IsDigit(r):
			c = 'd'
		default:
			c = r
		}
		if c == last {
			run++
		} else {
			run = 0
		}
		last = c
		if run < 4 {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// IsPunctuation reports whether every rune in s is punctuation or a symbol.
func IsPunctuation(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !IsPunct(r) && !IsSymbol(r) {
			return false
		}
	}
	return true
}
