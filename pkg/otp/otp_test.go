package otp

import "testing"

func TestGenerate(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := Generate()
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("Generate() length = %d, want %d (%q)", len(code), CodeLength, code)
		}
		for _, ch := range code {
			if ch < '0' || ch > '9' {
				t.Fatalf("Generate() produced non-digit %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("Generate() returned the same code 20 times")
	}
}

func TestVerify(t *testing.T) {
	hash := Hash("123456")

	tests := []struct {
		name    string
		hash    string
		code    string
		wantErr error
	}{
		{"match", hash, "123456", nil},
		{"match with surrounding whitespace", hash, " 123456 ", nil},
		{"mismatch", hash, "654321", ErrMismatch},
		{"empty code", hash, "", ErrMismatch},
		{"plaintext is not the stored value", "123456", "123456", ErrMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Verify(tt.hash, tt.code); err != tt.wantErr {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHashIsStable(t *testing.T) {
	if Hash("000111") != Hash("000111") {
		t.Error("Hash() not deterministic")
	}
	if Hash("000111") == "000111" {
		t.Error("Hash() must not return the plaintext")
	}
}
