package ratelimit

import "testing"

func newTestLimiter(perMinute int) *Limiter {
	rl := NewLimiter(Config{RequestsPerMinute: perMinute})
	rl.Stop()
	return rl
}

func TestAllowWithinLimit(t *testing.T) {
	rl := newTestLimiter(3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d denied below the limit", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("request above the limit allowed")
	}
	if rl.Rejected() != 1 {
		t.Errorf("rejected = %d, want 1", rl.Rejected())
	}
}

func TestClientsAreIndependent(t *testing.T) {
	rl := newTestLimiter(1)

	if !rl.Allow("10.0.0.1") {
		t.Fatal("first client denied")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("second client throttled by first client's traffic")
	}
	if rl.ActiveClients() != 2 {
		t.Errorf("active clients = %d, want 2", rl.ActiveClients())
	}
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
