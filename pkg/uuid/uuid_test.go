package uuid

import "testing"

func TestNew_VersionAndVariant(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u[6]>>4 != 4 {
		t.Fatalf("expected version 4, got %d", u[6]>>4)
	}
	if u[8]&0xc0 != 0x80 {
		t.Fatalf("expected RFC 4122 variant, got %08b", u[8])
	}
}

func TestParse_RoundTrip(t *testing.T) {
	u := MustNew()
	parsed, err := Parse(u.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != u {
		t.Fatalf("round trip mismatch: got %s want %s", parsed, u)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "not-a-uuid", "1234", "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"} {
		if _, err := Parse(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}
