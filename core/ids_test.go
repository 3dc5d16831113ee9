package core

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{
			name:   "valid prefix",
			prefix: "command",
		},
		{
			name:   "short prefix",
			prefix: "u",
		},
		{
			name:   "uppercase prefix gets lowercased",
			prefix: "COMMAND",
		},
		{
			name:   "prefix with spaces gets trimmed",
			prefix: "  command  ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewID(tt.prefix)

			// Check the format: prefix_ULID
			expectedPrefix := strings.ToLower(strings.TrimSpace(tt.prefix)) + "_"
			if !strings.HasPrefix(got, expectedPrefix) {
				t.Errorf("NewID() = %v, want prefix %v", got, expectedPrefix)
			}

			// Check ULID pattern: 26 characters, base32 encoded
			ulidPart := strings.TrimPrefix(got, expectedPrefix)
			if len(ulidPart) != 26 {
				t.Errorf("NewID() ULID part length = %v, want 26", len(ulidPart))
			}

			ulidPattern := regexp.MustCompile(`^[0123456789ABCDEFGHJKMNPQRSTVWXYZ]{26}$`)
			if !ulidPattern.MatchString(ulidPart) {
				t.Errorf("NewID() ULID part %v does not match expected pattern", ulidPart)
			}
		})
	}
}

func TestNewIDSortable(t *testing.T) {
	// Keys derived from NewID must preserve creation order when sorted
	// lexicographically - the queue depends on this for FIFO-ish dispatch.
	first := NewID("command")
	time.Sleep(2 * time.Millisecond)
	second := NewID("command")

	if !(first < second) {
		t.Errorf("expected %v < %v", first, second)
	}
}

func TestNewIDPanic(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{
			name:   "empty prefix panics",
			prefix: "",
		},
		{
			name:   "whitespace-only prefix panics",
			prefix: "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("NewID(%q) did not panic", tt.prefix)
				}
			}()
			NewID(tt.prefix)
		})
	}
}

func TestIsValidULID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{
			name: "valid prefixed ULID",
			id:   NewID("command"),
			want: true,
		},
		{
			name: "empty string",
			id:   "",
			want: false,
		},
		{
			name: "missing prefix",
			id:   "01G0EZ1XTM37C5X11SQTDNCTM1",
			want: false,
		},
		{
			name: "wrong ULID length",
			id:   "command_01G0EZ1XTM",
			want: false,
		},
		{
			name: "invalid ULID characters",
			id:   "command_01G0EZ1XTM37C5X11SQTDNCTIL",
			want: false,
		},
		{
			name: "uppercase prefix",
			id:   "COMMAND_01G0EZ1XTM37C5X11SQTDNCTM1",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidULID(tt.id); got != tt.want {
				t.Errorf("IsValidULID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
