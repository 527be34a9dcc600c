package auth

import "testing"

func TestTeacherCodeIsStableSixDigits(t *testing.T) {
	code := TeacherCode("Grace Hopper")
	if len(code) != 6 || code[0] == '0' {
		t.Fatalf("expected six digits, got %q", code)
	}
	if TeacherCode("Grace Hopper") != code {
		t.Fatalf("code must be deterministic")
	}
	if TeacherCode("grace hopper") != code {
		t.Fatalf("code must ignore case")
	}
	if TeacherCode("Grace Hoppe") == code {
		t.Fatalf("different names should yield different codes")
	}
	if TeacherCode("") != "" {
		t.Fatalf("empty name has no code")
	}
}

func TestTeacherCodeExpandsSpecialCasing(t *testing.T) {
	cases := []struct{ name, upper string }{
		{"Stra\u00DFe", "STRASSE"},
		{"\uFB01ona", "FIONA"},
		{"E\uFB00ie", "EFFIE"},
		{"\u1FB3", "\u0391\u0399"},
		{"\u01F0ohn", "J\u030COHN"},
	}
	for _, tc := range cases {
		if TeacherCode(tc.name) != TeacherCode(tc.upper) {
			t.Fatalf("expected %q to share the code of %q", tc.name, tc.upper)
		}
	}
}
