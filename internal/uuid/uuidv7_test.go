package uuid

import (
	"strings"
	"testing"
)

func TestNewIsVersion7(t *testing.T) {
	id := New()
	if !IsValid(id) {
		t.Fatalf("expected valid uuid, got %q", id)
	}
	// version nibble is the first character of the third group
	parts := strings.Split(id, "-")
	if len(parts) != 5 || parts[2][0] != '7' {
		t.Errorf("expected version 7 uuid, got %q", id)
	}
}

func TestNewIsTimeOrdered(t *testing.T) {
	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		if next <= prev {
			t.Fatalf("expected %q > %q", next, prev)
		}
		prev = next
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "lowercase", input: "0190a6b2-3c4d-7e5f-8a9b-0c1d2e3f4a5b", want: "0190a6b2-3c4d-7e5f-8a9b-0c1d2e3f4a5b"},
		{name: "uppercase_normalized", input: "0190A6B2-3C4D-7E5F-8A9B-0C1D2E3F4A5B", want: "0190a6b2-3c4d-7e5f-8a9b-0c1d2e3f4a5b"},
		{name: "garbage", input: "not-a-uuid", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
