package api

import (
	"testing"
	"time"
)

func TestLoginKeys(t *testing.T) {
	keys := loginKeys{email: "ada@example.com"}
	loc := time.FixedZone("UTC+8", 8*3600)

	a := keys.rate("10.0.0.1", time.Date(2026, 3, 1, 9, 5, 0, 0, loc))
	b := keys.rate("10.0.0.1", time.Date(2026, 3, 1, 9, 55, 0, 0, loc))
	if a != b {
		t.Fatalf("same hour should share a window: %s vs %s", a, b)
	}
	if a != "rate:login:10.0.0.1:ada@example.com:1772326800" {
		t.Fatalf("unexpected rate key %s", a)
	}
	if next := keys.rate("10.0.0.1", time.Date(2026, 3, 1, 10, 0, 0, 0, loc)); next == a {
		t.Fatal("next hour must start a new window")
	}
	if keys.rate("10.0.0.2", time.Date(2026, 3, 1, 9, 5, 0, 0, loc)) == a {
		t.Fatal("different IPs must not share a counter")
	}
	if keys.failures() != "lock:login:fail:ada@example.com" || keys.lock() != "lock:login:ada@example.com" {
		t.Fatalf("unexpected lock keys %s %s", keys.failures(), keys.lock())
	}
}
