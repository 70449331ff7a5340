package token

import "testing"

func TestGenerateIsUnique(t *testing.T) {
	a, err := Generate(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Generate(32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Fatal("two generated tokens must differ")
	}
	if len(a) == 0 {
		t.Fatal("token must not be empty")
	}
}

func TestHashIsDeterministic(t *testing.T) {
	if Hash("abc") != Hash("abc") {
		t.Fatal("hash must be deterministic")
	}
	if Hash("abc") == Hash("abd") {
		t.Fatal("distinct tokens must hash differently")
	}
	if len(Hash("abc")) != 64 {
		t.Fatalf("hex sha256 length = %d, want 64", len(Hash("abc")))
	}
}
