package services

import (
	"strings"
	"testing"
)

func TestCodeGenerator_Length(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantChars int
	}{
		{"default length", 6, 6},
		{"custom length", 8, 8},
		{"zero falls back to six", 0, 6},
		{"negative falls back to six", -3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := NewCodeGenerator(tt.length)
			code, err := gen.Generate()
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if len(code) != tt.wantChars {
				t.Errorf("expected %d characters, got %d (%q)", tt.wantChars, len(code), code)
			}
		})
	}
}

func TestCodeGenerator_Alphabet(t *testing.T) {
	gen := NewCodeGenerator(6)
	for i := 0; i < 100; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		for _, r := range code {
			if !strings.ContainsRune(string(codeAlphabet), r) {
				t.Fatalf("code %q contains character %q outside the alphabet", code, r)
			}
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("expected uppercase code, got %q", code)
		}
	}
}

func TestCodeGenerator_Varies(t *testing.T) {
	gen := NewCodeGenerator(6)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := gen.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		seen[code] = true
	}
	// 50 draws from a 36^6 space colliding down to a single value would mean
	// the generator is broken, not unlucky.
	if len(seen) < 2 {
		t.Errorf("expected distinct codes across 50 generations, got %d distinct", len(seen))
	}
}
