package scanner

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLatchStopsFurtherEmissions(t *testing.T) {
	var emissions atomic.Int32
	s := NewSession(func() bool {
		emissions.Add(1)
		return true // emit on every run
	}, 10*time.Millisecond)
	defer s.Close()

	s.ScanNow()
	if !s.Latched() {
		t.Fatal("successful scan must engage the latch")
	}

	// Simulated mutation storm after success.
	for i := 0; i < 20; i++ {
		s.Mutated()
	}
	s.ScanNow()
	time.Sleep(50 * time.Millisecond)

	if got := emissions.Load(); got != 1 {
		t.Errorf("emissions = %d, want exactly 1 per page lifetime", got)
	}
}

func TestUnsuccessfulScanDoesNotLatch(t *testing.T) {
	var runs atomic.Int32
	s := NewSession(func() bool {
		runs.Add(1)
		return false
	}, 10*time.Millisecond)
	defer s.Close()

	s.ScanNow()
	s.ScanNow()
	if s.Latched() {
		t.Fatal("failed scans must not latch")
	}
	if got := runs.Load(); got != 2 {
		t.Errorf("runs = %d, want 2", got)
	}
}

func TestMutationBurstDebounces(t *testing.T) {
	var runs atomic.Int32
	s := NewSession(func() bool {
		runs.Add(1)
		return false
	}, 30*time.Millisecond)
	defer s.Close()

	// A burst of mutations inside one quiet window collapses to one scan.
	for i := 0; i < 10; i++ {
		s.Mutated()
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(80 * time.Millisecond)

	if got := runs.Load(); got != 1 {
		t.Errorf("runs = %d, want 1 debounced scan", got)
	}
}

func TestMutationAfterQuietWindowRescans(t *testing.T) {
	var runs atomic.Int32
	s := NewSession(func() bool {
		runs.Add(1)
		return false
	}, 10*time.Millisecond)
	defer s.Close()

	s.Mutated()
	time.Sleep(40 * time.Millisecond)
	s.Mutated()
	time.Sleep(40 * time.Millisecond)

	if got := runs.Load(); got != 2 {
		t.Errorf("runs = %d, want 2 separate scans", got)
	}
}

func TestCloseCancelsPendingScan(t *testing.T) {
	var runs atomic.Int32
	s := NewSession(func() bool {
		runs.Add(1)
		return false
	}, 20*time.Millisecond)

	s.Mutated()
	s.Close()
	time.Sleep(50 * time.Millisecond)

	if got := runs.Load(); got != 0 {
		t.Errorf("runs = %d, want 0 after Close", got)
	}
	if s.Latched() {
		t.Error("Close must not engage the latch")
	}
}

func TestConcurrentScansEmitOnce(t *testing.T) {
	var emissions atomic.Int32
	s := NewSession(func() bool {
		time.Sleep(10 * time.Millisecond) // hold the scan open so calls overlap
		emissions.Add(1)
		return true
	}, time.Hour)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ScanNow()
		}()
	}
	wg.Wait()

	if got := emissions.Load(); got != 1 {
		t.Errorf("emissions = %d, want 1 despite overlapping calls", got)
	}
	if !s.Latched() {
		t.Error("latch not engaged after the emitting scan")
	}
}

func TestSuccessDuringDebouncedScanLatches(t *testing.T) {
	s := NewSession(func() bool { return true }, 10*time.Millisecond)
	defer s.Close()

	s.Mutated()
	time.Sleep(40 * time.Millisecond)

	if !s.Latched() {
		t.Error("debounced scan success must engage the latch")
	}
}
