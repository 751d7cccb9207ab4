package env

import "testing"

func TestStringTrimsAndFallsBack(t *testing.T) {
	t.Setenv("POS_TEST_VALUE", "  console ")
	if got := String("POS_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("got %q", got)
	}
	t.Setenv("POS_TEST_VALUE", "   ")
	if got := String("POS_TEST_VALUE", "json"); got != "json" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
}

func TestBoolFallsBackOnGarbage(t *testing.T) {
	t.Setenv("POS_TEST_FLAG", "yes please")
	if !Bool("POS_TEST_FLAG", true) {
		t.Fatalf("malformed value should return fallback")
	}
	t.Setenv("POS_TEST_FLAG", "false")
	if Bool("POS_TEST_FLAG", true) {
		t.Fatalf("expected false")
	}
}
