package utils

import "testing"

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  alice  ", "alice"},
		{"escapes html", `<b>bob</b>`, "&lt;b&gt;bob&lt;/b&gt;"},
		{"escapes quotes", `o'brien "the dev"`, "o&#39;brien &#34;the dev&#34;"},
		{"empty stays empty", "", ""},
		{"inner whitespace kept", "Jane Doe", "Jane Doe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeInput(tc.in); got != tc.want {
				t.Fatalf("SanitizeInput(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("got %q", got)
	}
	// Differently-cased spellings must map to the same stored value.
	if NormalizeEmail("A@B.com") != NormalizeEmail("a@b.COM") {
		t.Fatal("case variants did not normalize to the same value")
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.com", "user.name+tag@example.co.uk", "x@localhost"}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("expected %q to be valid", e)
		}
	}

	invalid := []string{"", "plainaddress", "@no-local.com", "spaces in@addr.com", "Name <a@b.com>"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("expected %q to be invalid", e)
		}
	}
}
