package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDecodeFailed, "decode %s: truncated data", "logo.png")

	if err.Code != ErrCodeDecodeFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDecodeFailed)
	}

	if err.Message != "decode logo.png: truncated data" {
		t.Errorf("Message = %v, want %v", err.Message, "decode logo.png: truncated data")
	}

	expected := "DECODE_FAILED: decode logo.png: truncated data"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeWriteFailed, cause, "write icons/logo.png")

	if err.Code != ErrCodeWriteFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeWriteFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeAlreadyExists, "icons/a.png exists"),
			code:     ErrCodeAlreadyExists,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeAlreadyExists, "icons/a.png exists"),
			code:     ErrCodeDecodeFailed,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeDecodeFailed,
			expected: false,
		},
		{
			name:     "wrapped structured error",
			err:      Wrap(ErrCodeCache, New(ErrCodeInternal, "inner"), "outer"),
			code:     ErrCodeCache,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if code := GetCode(New(ErrCodeSourceNotFound, "img missing")); code != ErrCodeSourceNotFound {
		t.Errorf("GetCode = %v, want %v", code, ErrCodeSourceNotFound)
	}
	if code := GetCode(errors.New("plain")); code != "" {
		t.Errorf("GetCode(plain) = %v, want empty", code)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeWriteFailed, "cannot write icons/logo.png")
	if msg := UserMessage(err); msg != "cannot write icons/logo.png" {
		t.Errorf("UserMessage = %q", msg)
	}

	plain := errors.New("plain failure")
	if msg := UserMessage(plain); msg != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", msg)
	}
}

func TestIsSkip(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeAlreadyExists, "exists"), true},
		{New(ErrCodeFullyTransparent, "transparent"), true},
		{New(ErrCodeDecodeFailed, "corrupt"), false},
		{New(ErrCodeWriteFailed, "denied"), false},
		{errors.New("plain"), false},
	}
	for _, tt := range tests {
		if got := IsSkip(tt.err); got != tt.want {
			t.Errorf("IsSkip(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestValidateSize(t *testing.T) {
	tests := []struct {
		size    int
		wantErr bool
	}{
		{256, false},
		{1, false},
		{8192, false},
		{0, true},
		{-16, true},
		{8193, true},
	}
	for _, tt := range tests {
		err := ValidateSize(tt.size)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSize(%d) error = %v, wantErr %v", tt.size, err, tt.wantErr)
		}
		if err != nil && GetCode(err) != ErrCodeInvalidSize {
			t.Errorf("ValidateSize(%d) code = %v, want %v", tt.size, GetCode(err), ErrCodeInvalidSize)
		}
	}
}

func TestValidateBasename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "logo.png", false},
		{"spaces ok", "my logo.png", false},
		{"empty", "", true},
		{"path separator", "a/b.png", true},
		{"backslash", "a\\b.png", true},
		{"traversal", "..secret.png", true},
		{"control char", "a\x00b.png", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBasename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBasename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
