package core

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		msg   string
	}{
		{"ab", false, "El usuario debe tener entre 3 y 20 caracteres"},
		{"valid_user-1", true, ""},
		{"bad user!", false, "El usuario solo puede contener letras, números, guiones y guiones bajos"},
		{"", false, "El usuario no puede estar vacío"},
		{"    ", false, "El usuario no puede estar vacío"},
		{"abc", true, ""},
		{"abcdefghijklmnopqrst", true, ""},
		{"abcdefghijklmnopqrstu", false, "El usuario debe tener entre 3 y 20 caracteres"},
		{"ñandú", false, "El usuario solo puede contener letras, números, guiones y guiones bajos"},
	}
	for _, tc := range cases {
		got := ValidateUsername(tc.in)
		if got.Valid != tc.valid {
			t.Fatalf("ValidateUsername(%q).Valid = %v, want %v", tc.in, got.Valid, tc.valid)
		}
		if got.Message != tc.msg {
			t.Fatalf("ValidateUsername(%q).Message = %q, want %q", tc.in, got.Message, tc.msg)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		msg   string
	}{
		{"short1A", false, "La contraseña debe tener mínimo 8 caracteres"},
		{"longenough", false, "La contraseña debe contener al menos un número"},
		{"longenough1", false, "La contraseña debe contener al menos una letra mayúscula"},
		{"Longenough1", true, ""},
		{"Passw0rd", true, ""},
		{"12345678", false, "La contraseña debe contener al menos una letra mayúscula"},
	}
	for _, tc := range cases {
		got := ValidatePassword(tc.in)
		if got.Valid != tc.valid || got.Message != tc.msg {
			t.Fatalf("ValidatePassword(%q) = %+v, want valid=%v msg=%q", tc.in, got, tc.valid, tc.msg)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	good := []string{"alice@example.com", "a.b+c@sub.domain.org", "x@y.z"}
	bad := []string{"", "alice", "alice@", "alice@example", "al ice@example.com", "a@b@c.com", "@example.com"}
	for _, s := range good {
		if !ValidateEmail(s) {
			t.Fatalf("ValidateEmail(%q) = false, want true", s)
		}
	}
	for _, s := range bad {
		if ValidateEmail(s) {
			t.Fatalf("ValidateEmail(%q) = true, want false", s)
		}
	}
}

func TestValidationResultErr(t *testing.T) {
	if err := ValidateUsername("alice").Err(); err != nil {
		t.Fatalf("valid username returned error: %v", err)
	}
	err := ValidateUsername("ab").Err()
	fe, ok := err.(*FieldError)
	if !ok {
		t.Fatalf("expected *FieldError, got %T", err)
	}
	if fe.Field != "username" {
		t.Fatalf("field = %q, want username", fe.Field)
	}
	code, _, ok := ErrorCode(err)
	if !ok || code != "INVALID_FIELD_FORMAT" {
		t.Fatalf("ErrorCode = %q,%v", code, ok)
	}
}

func TestLengthsCountUTF16Units(t *testing.T) {
	// each emoji is two UTF-16 units: 3 + 3*2 = 9
	if r := ValidatePassword("Ab1😀😀😀"); !r.Valid {
		t.Fatalf("ValidatePassword(astral) = %+v, want valid", r)
	}
	if r := ValidatePassword("Ab1éééé"); r.Valid {
		t.Fatalf("7-unit password accepted")
	}
	// 11 emoji = 22 units, over the username maximum
	long := strings.Repeat("😀", 11)
	if r := ValidateUsername(long); r.Valid || r.Message != "El usuario debe tener entre 3 y 20 caracteres" {
		t.Fatalf("ValidateUsername(22 units) = %+v", r)
	}
	if formLength("añb") != 3 {
		t.Fatalf("formLength of BMP text should match rune count")
	}
}
