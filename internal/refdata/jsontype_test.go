package refdata

import "testing"

func TestJSONStringSliceRoundTrip(t *testing.T) {
	s := JSONStringSlice{"203.0.113.0/24", "198.51.100.0/24"}
	val, err := s.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out JSONStringSlice
	if err := out.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(out) != 2 || out[0] != s[0] || out[1] != s[1] {
		t.Fatalf("round trip mismatch: got %v, want %v", out, s)
	}
}

func TestJSONStringSliceScanNil(t *testing.T) {
	var out JSONStringSlice
	if err := out.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil slice, got %v", out)
	}
}

func TestRawJSONRoundTrip(t *testing.T) {
	r := RawJSON(`{"ip_check":{"passed":true,"score":0}}`)
	val, err := r.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out RawJSON
	if err := out.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if string(out) != string(r) {
		t.Fatalf("round trip mismatch: got %s, want %s", out, r)
	}
}
