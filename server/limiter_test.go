package server

import (
	"testing"
	"time"
)

func TestLimiterEvictsIdleIPs(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.getLimiter("10.0.0.1")
	l.getLimiter("10.0.0.2")
	if n := l.Size(); n != 2 {
		t.Fatalf("tracking %d ips, want 2", n)
	}

	now = now.Add(limiterIdle / 2)
	l.getLimiter("10.0.0.2")

	now = now.Add(limiterIdle/2 + time.Second)
	l.getLimiter("10.0.0.3")
	if n := l.Size(); n != 2 {
		t.Fatalf("tracking %d ips after idle sweep, want 2", n)
	}
	if _, ok := l.ips["10.0.0.1"]; ok {
		t.Fatal("idle ip was not evicted")
	}
	if _, ok := l.ips["10.0.0.2"]; !ok {
		t.Fatal("recently seen ip was evicted")
	}
}

func TestLimiterKeepsStateWhileActive(t *testing.T) {
	l := NewIPRateLimiter(0.001, 1)
	if !l.getLimiter("10.0.0.1").Allow() {
		t.Fatal("first request rejected")
	}
	if l.getLimiter("10.0.0.1").Allow() {
		t.Fatal("burst of 1 allowed a second request")
	}
}
