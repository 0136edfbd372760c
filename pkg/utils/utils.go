package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologConsoleWriter returns a console writer for zerolog
func ZerologConsoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
}

// Has0xPrefix reports whether s starts with 0x or 0X.
func Has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Trim0x strips a leading 0x or 0X.
func Trim0x(s string) string {
	if Has0xPrefix(s) {
		return s[2:]
	}
	return s
}

// Add0x prefixes s with 0x unless it already has one.
func Add0x(s string) string {
	if Has0xPrefix(s) {
		return s
	}
	return "0x" + s
}

// NormalizeHex trims whitespace and the 0x prefix and lowercases s.
func NormalizeHex(s string) string {
	return strings.ToLower(Trim0x(strings.TrimSpace(s)))
}
