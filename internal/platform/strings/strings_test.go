package strings

import "testing"

func TestMustString(t *testing.T) {
	if got := MustString(" ok ", "name"); got != " ok " {
		t.Fatalf("MustString = %q", got)
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic for blank input")
		}
	}()
	MustString("   ", "name")
}

func TestPtrAndDeref(t *testing.T) {
	if Ptr("") != nil {
		t.Fatalf("Ptr(\"\") should be nil")
	}
	p := Ptr("x")
	if p == nil || *p != "x" {
		t.Fatalf("Ptr(\"x\") = %v", p)
	}
	if Deref(nil) != "" {
		t.Fatalf("Deref(nil) should be empty")
	}
	if Deref(p) != "x" {
		t.Fatalf("Deref = %q", Deref(p))
	}
}

func TestSQLNullHelpers(t *testing.T) {
	if SQLNull("  ") != nil {
		t.Fatalf("SQLNull blank should be nil")
	}
	if SQLNull("a") != "a" {
		t.Fatalf("SQLNull value mismatch")
	}
	if SQLNullPtr(nil) != nil {
		t.Fatalf("SQLNullPtr(nil) should be nil")
	}
	blank := "  "
	if SQLNullPtr(&blank) != nil {
		t.Fatalf("SQLNullPtr(blank) should be nil")
	}
	v := "b"
	if SQLNullPtr(&v) != "b" {
		t.Fatalf("SQLNullPtr value mismatch")
	}
}

func TestIfEmpty(t *testing.T) {
	fb := []string{"x"}
	if got := IfEmpty(nil, fb); len(got) != 1 || got[0] != "x" {
		t.Fatalf("IfEmpty(nil) = %v, want fallback", got)
	}
	if got := IfEmpty([]string{}, fb); len(got) != 1 {
		t.Fatalf("IfEmpty(empty) should use fallback")
	}
	v := []string{"a", "b"}
	if got := IfEmpty(v, fb); len(got) != 2 || got[0] != "a" {
		t.Fatalf("IfEmpty(non-empty) should return original, got %v", got)
	}
}
