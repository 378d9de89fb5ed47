package mempool

import (
	"path/filepath"
	"testing"
)

func openTestMempool(t *testing.T) *Mempool {
	t.Helper()
	m, err := Open(filepath.Join(t.TempDir(), "mempool.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestEnqueueFIFOOrder(t *testing.T) {
	m := openTestMempool(t)

	if err := m.Enqueue("0x1", "0x2", 10, "pk1"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := m.Enqueue("0x2", "0x3", 20, "pk2"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	reqs, err := m.DrainAll()
	if err != nil {
		t.Fatalf("DrainAll: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("DrainAll len = %d, want 2", len(reqs))
	}
	if reqs[0].From != "0x1" || reqs[1].From != "0x2" {
		t.Errorf("drain order not FIFO: %+v", reqs)
	}
}

func TestDrainAllAtomicClear(t *testing.T) {
	m := openTestMempool(t)

	_ = m.Enqueue("0x1", "0x2", 10, "pk1")

	first, err := m.DrainAll()
	if err != nil || len(first) != 1 {
		t.Fatalf("first drain = %+v, err=%v", first, err)
	}

	second, err := m.DrainAll()
	if err != nil {
		t.Fatalf("second DrainAll: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second drain should be empty, got %+v", second)
	}
}

func TestDrainAllEmptyInitially(t *testing.T) {
	m := openTestMempool(t)

	reqs, err := m.DrainAll()
	if err != nil {
		t.Fatalf("DrainAll: %v", err)
	}
	if len(reqs) != 0 {
		t.Errorf("fresh mempool should drain empty, got %+v", reqs)
	}
}
