package ipcidr

import "testing"

func TestParse(t *testing.T) {
	if _, v, err := Parse("8.8.8.8"); err != nil || v != V4 {
		t.Fatalf("expected v4, got version %v err %v", v, err)
	}
	if _, v, err := Parse("2001:4860:4860::8888"); err != nil || v != V6 {
		t.Fatalf("expected v6, got version %v err %v", v, err)
	}
	if _, _, err := Parse("not-an-ip"); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

func TestIsReserved(t *testing.T) {
	cases := map[string]bool{
		"10.0.0.5":       true,
		"192.168.1.1":    true,
		"127.0.0.1":      true,
		"169.254.1.1":    true,
		"172.16.0.1":     true,
		"224.0.0.1":      true,
		"255.255.255.255": true,
		"8.8.8.8":        false,
		"1.1.1.1":        false,
	}
	for ip, want := range cases {
		addr, _, err := Parse(ip)
		if err != nil {
			t.Fatalf("Parse(%s): %v", ip, err)
		}
		if got := IsReserved(addr); got != want {
			t.Errorf("IsReserved(%s) = %v, want %v", ip, got, want)
		}
	}
}

func TestInRange(t *testing.T) {
	addr, _, _ := Parse("203.0.113.42")
	ok, err := InRange(addr, "203.0.113.0/24")
	if err != nil || !ok {
		t.Fatalf("expected containment, got %v err %v", ok, err)
	}

	ok, err = InRange(addr, "198.51.100.0/24")
	if err != nil || ok {
		t.Fatalf("expected no containment, got %v err %v", ok, err)
	}

	if _, err := InRange(addr, "garbage"); err == nil {
		t.Fatal("expected error for malformed cidr")
	}
}

func TestInAnyRange(t *testing.T) {
	addr, _, _ := Parse("198.51.100.7")
	ranges := []string{"not-a-cidr", "203.0.113.0/24", "198.51.100.0/24"}
	if !InAnyRange(addr, ranges) {
		t.Fatal("expected match, malformed entries should be skipped not fatal")
	}
}
