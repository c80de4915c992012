package errors

import (
	"strings"
	"unicode"
)

// ValidateSize validates an output icon dimension.
// Sizes must be positive; an upper bound guards against typos that would
// allocate absurd pixel buffers (a 65536px icon is ~16 GiB of RGBA).
func ValidateSize(size int) error {
	if size <= 0 {
		return New(ErrCodeInvalidSize, "size must be positive, got %d", size)
	}
	const maxSize = 8192
	if size > maxSize {
		return New(ErrCodeInvalidSize, "size too large (max %d), got %d", maxSize, size)
	}
	return nil
}

// ValidateBasename validates an output filename for safety.
// It ensures the name is a simple basename without path components,
// control characters, or traversal sequences.
func ValidateBasename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	const maxNameLength = 256
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPath, "filename too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid characters")
		}
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "filename cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateAddr validates a listen address for the preview server.
// It accepts host:port forms; an empty host (":8473") binds all interfaces.
func ValidateAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidInput, "listen address cannot be empty")
	}
	if !strings.Contains(addr, ":") {
		return New(ErrCodeInvalidInput, "listen address must be host:port, got %q", addr)
	}
	return nil
}
