package ratelimiter

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1")
		if !ok {
			t.Fatalf("request %d denied, want allowed", i+1)
		}
	}

	ok, retry := rl.Allow("10.0.0.1")
	if ok {
		t.Fatal("4th request allowed, want denied")
	}
	if retry != time.Minute {
		t.Fatalf("retry-after = %v, want %v", retry, time.Minute)
	}
}

func TestAllowTracksClientsIndependently(t *testing.T) {
	rl := NewFixedWindowLimiter(1, time.Minute)

	if ok, _ := rl.Allow("10.0.0.1"); !ok {
		t.Fatal("first client denied")
	}
	if ok, _ := rl.Allow("10.0.0.2"); !ok {
		t.Fatal("second client denied, windows should be per-IP")
	}
	if ok, _ := rl.Allow("10.0.0.1"); ok {
		t.Fatal("first client allowed past its limit")
	}
}
